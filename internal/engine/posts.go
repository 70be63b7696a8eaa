package engine

import (
	"context"
	"errors"
	"time"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

// CreatePost creates a post with zeroed aggregates. Only the aggregator and
// tracker ever mutate rating, ratingCount, commentCount and topComment after
// this point.
func (e *Engine) CreatePost(ctx context.Context, ident models.Identity, req models.CreatePostRequest) (models.Post, error) {
	if ident.IsZero() {
		return models.Post{}, ErrUnauthorized
	}

	post := models.Post{
		Title:        req.Title,
		Content:      req.Content,
		AuthorID:     ident.UID,
		AuthorName:   displayName(ident),
		AuthorAvatar: AvatarURL(displayName(ident)),
		CreatedAt:    time.Now().UTC(),
		Tags:         req.Tags,
	}

	id, err := e.store.Collection(store.Posts).Insert(ctx, post)
	if err != nil {
		return models.Post{}, err
	}
	post.ID = id
	return post, nil
}

// GetPost returns one post by id.
func (e *Engine) GetPost(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	if err := e.store.Collection(store.Posts).Get(ctx, id, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// DeletePost removes a post, author-only. Comments are left in place; they
// become unreachable through the post but queries by postId still find them.
func (e *Engine) DeletePost(ctx context.Context, id string, ident models.Identity) error {
	if ident.IsZero() {
		return ErrUnauthorized
	}

	var post models.Post
	if err := e.store.Collection(store.Posts).Get(ctx, id, &post); err != nil {
		return err
	}
	if post.AuthorID != ident.UID {
		return ErrPermissionDenied
	}

	return e.store.Collection(store.Posts).Delete(ctx, id)
}

// WatchPost delivers the post document after every committed write to the
// posts collection, so detail views track aggregate changes live. The channel
// closes when the post is deleted.
func (e *Engine) WatchPost(ctx context.Context, id string) (<-chan models.Post, func(), error) {
	q := store.NewQuery().Where("id", store.OpEqual, id)

	sub, err := e.store.Collection(store.Posts).Subscribe(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan models.Post, 1)
	go func() {
		defer close(out)
		for docs := range sub.Snapshots {
			if len(docs) == 0 {
				return
			}
			var post models.Post
			if err := docs[0].Decode(&post); err != nil {
				return
			}
			select {
			case out <- post:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Cancel, nil
}

// IncrementViews bumps a post's view counter. Views are non-critical
// telemetry: transient store failures are swallowed so a flaky connection
// never surfaces as an error on a page load.
func (e *Engine) IncrementViews(ctx context.Context, id string) error {
	err := e.store.RunTransaction(ctx, func(tx *store.Tx) error {
		var post models.Post
		if err := tx.Get(store.Posts, id, &post); err != nil {
			return err
		}
		post.Views++
		return tx.Set(store.Posts, id, post)
	})
	if errors.Is(err, ErrUnavailable) {
		return nil
	}
	return err
}
