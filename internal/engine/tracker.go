package engine

import (
	"context"
	"sort"
	"time"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

// LikeComment increments a comment's like counter and re-evaluates the owning
// post's cached top comment in the same transaction. The top comment is
// replaced when there is none, when the liked comment now has strictly more
// likes than the current top, or when the liked comment IS the current top
// (refreshing its cached like count). Ties never displace the incumbent.
func (e *Engine) LikeComment(ctx context.Context, commentID string) (models.Comment, error) {
	var comment models.Comment

	err := e.store.RunTransaction(ctx, func(tx *store.Tx) error {
		if err := tx.Get(store.Comments, commentID, &comment); err != nil {
			return err
		}
		comment.Likes++
		if err := tx.Set(store.Comments, commentID, comment); err != nil {
			return err
		}

		var post models.Post
		if err := tx.Get(store.Posts, comment.PostID, &post); err != nil {
			return err
		}

		tc := post.TopComment
		if tc == nil || tc.ID == comment.ID || comment.Likes > tc.Likes {
			post.TopComment = &models.TopComment{
				ID:         comment.ID,
				Text:       comment.Text,
				AuthorName: comment.AuthorName,
				Likes:      comment.Likes,
			}
			return tx.Set(store.Posts, comment.PostID, post)
		}
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// AddReply appends a reply to the comment's embedded reply sequence and
// increments the post's commentCount, atomically. Replies never touch the
// rating aggregate.
func (e *Engine) AddReply(ctx context.Context, postID, commentID string, ident models.Identity, text, replyToName string) (models.Reply, error) {
	if ident.IsZero() {
		return models.Reply{}, ErrUnauthorized
	}

	reply := models.Reply{
		AuthorID:    ident.UID,
		AuthorName:  displayName(ident),
		Text:        text,
		CreatedAt:   time.Now().UTC(),
		Likes:       0,
		ReplyToName: replyToName,
	}

	err := e.store.RunTransaction(ctx, func(tx *store.Tx) error {
		var comment models.Comment
		if err := tx.Get(store.Comments, commentID, &comment); err != nil {
			return err
		}
		comment.Replies = append(comment.Replies, reply)
		if err := tx.Set(store.Comments, commentID, comment); err != nil {
			return err
		}

		var post models.Post
		if err := tx.Get(store.Posts, postID, &post); err != nil {
			return err
		}
		post.CommentCount++
		return tx.Set(store.Posts, postID, post)
	})
	if err != nil {
		return models.Reply{}, err
	}
	return reply, nil
}

// LikeReply increments the like counter of one embedded reply. Replies carry
// no id, so the target is located by its (createdAt, authorId, text) tuple,
// first exact match wins, and the whole reply sequence is written back. The
// read-modify-write runs inside a transaction, so concurrent likes of the
// same comment's replies serialize instead of losing updates.
func (e *Engine) LikeReply(ctx context.Context, commentID string, target models.Reply) (models.Reply, error) {
	var liked models.Reply

	err := e.store.RunTransaction(ctx, func(tx *store.Tx) error {
		var comment models.Comment
		if err := tx.Get(store.Comments, commentID, &comment); err != nil {
			return err
		}

		for i := range comment.Replies {
			if comment.Replies[i].Matches(target) {
				comment.Replies[i].Likes++
				liked = comment.Replies[i]
				return tx.Set(store.Comments, commentID, comment)
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return models.Reply{}, err
	}
	return liked, nil
}

// SortReplies returns the replies ordered by likes descending for display;
// ties keep arrival order.
func SortReplies(replies []models.Reply) []models.Reply {
	sorted := append([]models.Reply(nil), replies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Likes > sorted[j].Likes
	})
	return sorted
}

// TopReply returns the highest-liked reply for the collapsed view.
func TopReply(replies []models.Reply) (models.Reply, bool) {
	if len(replies) == 0 {
		return models.Reply{}, false
	}
	return SortReplies(replies)[0], true
}

// CommentOrder selects the display ordering of a post's comments.
type CommentOrder string

const (
	OrderNewest  CommentOrder = "newest"  // creation time descending
	OrderHottest CommentOrder = "hottest" // likes descending
)

// SortComments orders comments for display. Both orderings are stable.
func SortComments(comments []models.Comment, order CommentOrder) []models.Comment {
	sorted := append([]models.Comment(nil), comments...)
	switch order {
	case OrderHottest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Likes > sorted[j].Likes
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}
	return sorted
}
