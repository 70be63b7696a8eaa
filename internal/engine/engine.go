// Package engine keeps the platform's derived statistics consistent as users
// concurrently comment, reply, like and rate against the shared document
// store: post rating aggregates, comment counts, top-comment pointers, like
// counters, feed ranking and the follow graph.
package engine

import (
	"net/url"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Store exposes the underlying document store, mainly for tests.
func (e *Engine) Store() *store.Store { return e.store }

// AvatarURL builds the placeholder avatar URL for a seed string (display
// name or uid). String construction only; the image service is external.
func AvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// displayName resolves the name shown on authored content, falling back to
// the email and then a generic label for providers that supply neither.
func displayName(ident models.Identity) string {
	if ident.DisplayName != "" {
		return ident.DisplayName
	}
	if ident.Email != "" {
		return ident.Email
	}
	return "Anonymous"
}
