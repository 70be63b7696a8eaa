package engine

import (
	"errors"

	"github.com/openboard/backend/internal/store"
)

var (
	// ErrNotFound: the referenced post/comment/user vanished; transactional
	// operations abort entirely and write nothing.
	ErrNotFound = store.ErrNotFound

	// ErrUnavailable: transient store failure, propagated not retried. The
	// caller decides whether to surface or swallow it.
	ErrUnavailable = store.ErrUnavailable

	// ErrUnauthorized: the action needs a signed-in identity. Checked before
	// any store mutation is attempted.
	ErrUnauthorized = errors.New("sign-in required")

	// ErrPermissionDenied: the identity is not allowed to act on the target,
	// e.g. deleting someone else's post.
	ErrPermissionDenied = errors.New("permission denied")

	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrSelfFollow = errors.New("cannot follow yourself")
)
