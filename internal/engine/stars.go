package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

// Standalone star ratings, distinct from comment ratings: one per
// (post, user), keyed "<postId>_<userId>", last write wins.

func starRatingID(postID, userID string) string {
	return postID + "_" + userID
}

// SetRating upserts the caller's star rating for a post.
func (e *Engine) SetRating(ctx context.Context, postID string, ident models.Identity, stars int) error {
	if ident.IsZero() {
		return ErrUnauthorized
	}
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: stars %d out of range 1-5", ErrInvalidArgument, stars)
	}

	rating := models.Rating{PostID: postID, UserID: ident.UID, Stars: stars}
	return e.store.Collection(store.Ratings).Set(ctx, starRatingID(postID, ident.UID), rating)
}

// UserRating returns the user's star rating for a post, 0 when unrated.
func (e *Engine) UserRating(ctx context.Context, postID, userID string) (int, error) {
	var rating models.Rating
	err := e.store.Collection(store.Ratings).Get(ctx, starRatingID(postID, userID), &rating)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rating.Stars, nil
}

// AverageRating returns the mean star rating across all raters of a post,
// 0 when nobody has rated.
func (e *Engine) AverageRating(ctx context.Context, postID string) (float64, error) {
	q := store.NewQuery().Where("postId", store.OpEqual, postID)
	docs, err := e.store.Collection(store.Ratings).Query(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	sum := 0
	for _, d := range docs {
		var r models.Rating
		if err := d.Decode(&r); err != nil {
			return 0, err
		}
		sum += r.Stars
	}
	return float64(sum) / float64(len(docs)), nil
}
