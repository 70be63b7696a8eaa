package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

// SubmitComment creates a comment carrying a mandatory 1-5 rating and folds
// that rating into the post's running average, all in one transaction: the
// comment is persisted and the post aggregate updated together, or neither
// happens. A comment's rating is folded exactly once, at creation; there is
// no edit or re-rate path.
//
// Nothing stops one user from submitting several rated comments on the same
// post; each one counts. The aggregate stays unrounded; display rounding is
// the reconciler's job.
func (e *Engine) SubmitComment(ctx context.Context, postID string, ident models.Identity, text string, rating int) (models.Comment, error) {
	if ident.IsZero() {
		return models.Comment{}, ErrUnauthorized
	}
	if rating < 1 || rating > 5 {
		return models.Comment{}, fmt.Errorf("%w: rating %d out of range 1-5", ErrInvalidArgument, rating)
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		AuthorID:   ident.UID,
		AuthorName: displayName(ident),
		Text:       text,
		Rating:     rating,
		CreatedAt:  time.Now().UTC(),
		Likes:      0,
		Replies:    []models.Reply{},
	}

	err := e.store.RunTransaction(ctx, func(tx *store.Tx) error {
		var post models.Post
		if err := tx.Get(store.Posts, postID, &post); err != nil {
			return err
		}

		newCount := post.RatingCount + 1
		post.Rating = (post.Rating*float64(post.RatingCount) + float64(rating)) / float64(newCount)
		post.RatingCount = newCount

		firstComment := post.CommentCount == 0
		post.CommentCount++

		if firstComment {
			// First comment is provisionally top until something is liked past it.
			post.TopComment = &models.TopComment{
				ID:         comment.ID,
				Text:       comment.Text,
				AuthorName: comment.AuthorName,
				Likes:      0,
			}
		}

		if err := tx.Set(store.Comments, comment.ID, comment); err != nil {
			return err
		}
		return tx.Set(store.Posts, postID, post)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment, author-only. The post's rating aggregate
// is NOT reversed; the fold from creation time stays in the average. Same for
// commentCount and any cached topComment snapshot.
func (e *Engine) DeleteComment(ctx context.Context, commentID string, ident models.Identity) error {
	if ident.IsZero() {
		return ErrUnauthorized
	}

	var comment models.Comment
	if err := e.store.Collection(store.Comments).Get(ctx, commentID, &comment); err != nil {
		return err
	}
	if comment.AuthorID != ident.UID {
		return ErrPermissionDenied
	}

	return e.store.Collection(store.Comments).Delete(ctx, commentID)
}

// CommentsForPost returns a post's comments ordered oldest first.
func (e *Engine) CommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	q := store.NewQuery().
		Where("postId", store.OpEqual, postID).
		OrderBy("createdAt", false)

	docs, err := e.store.Collection(store.Comments).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeComments(docs)
}

func decodeComments(docs []store.Document) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		var c models.Comment
		if err := d.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode comment %s: %w", d.ID, err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}
