package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/openboard/backend/internal/models"
)

func TestSubmitComment(t *testing.T) {
	ctx := context.Background()

	t.Run("requires_identity", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")

		_, err := e.SubmitComment(ctx, post.ID, models.Identity{}, "hi", 4)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects_out_of_range_rating", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")

		for _, r := range []int{0, 6, -1} {
			if _, err := e.SubmitComment(ctx, post.ID, bob, "hi", r); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("rating %d: expected ErrInvalidArgument, got %v", r, err)
			}
		}
	})

	t.Run("missing_post_aborts_with_not_found", func(t *testing.T) {
		e := newTestEngine(t)

		_, err := e.SubmitComment(ctx, "gone", bob, "hi", 4)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		comments, err := e.CommentsForPost(ctx, "gone")
		if err != nil {
			t.Fatalf("CommentsForPost: %v", err)
		}
		if len(comments) != 0 {
			t.Fatalf("aborted submission must write nothing, found %d comments", len(comments))
		}
	})

	// The walk-through from a fresh post: first comment rates 4, second
	// rates 2, then the second gets a like and takes over as top comment.
	t.Run("aggregate_walkthrough", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")

		first, err := e.SubmitComment(ctx, post.ID, bob, "great", 4)
		if err != nil {
			t.Fatalf("SubmitComment: %v", err)
		}

		got, _ := e.GetPost(ctx, post.ID)
		if got.Rating != 4.0 || got.RatingCount != 1 || got.CommentCount != 1 {
			t.Fatalf("after first comment: rating=%v count=%d comments=%d, want 4.0/1/1",
				got.Rating, got.RatingCount, got.CommentCount)
		}
		if got.TopComment == nil || got.TopComment.ID != first.ID || got.TopComment.Likes != 0 {
			t.Fatalf("first comment must become provisional top, got %+v", got.TopComment)
		}

		second, err := e.SubmitComment(ctx, post.ID, carol, "meh", 2)
		if err != nil {
			t.Fatalf("SubmitComment: %v", err)
		}

		got, _ = e.GetPost(ctx, post.ID)
		if got.Rating != 3.0 || got.RatingCount != 2 {
			t.Fatalf("after second comment: rating=%v count=%d, want 3.0/2", got.Rating, got.RatingCount)
		}
		if got.TopComment.ID != first.ID {
			t.Fatal("top comment must not change on a tie (0 likes each)")
		}

		if _, err := e.LikeComment(ctx, second.ID); err != nil {
			t.Fatalf("LikeComment: %v", err)
		}
		got, _ = e.GetPost(ctx, post.ID)
		if got.TopComment.ID != second.ID || got.TopComment.Likes != 1 {
			t.Fatalf("liked comment (1 > 0) must take over as top, got %+v", got.TopComment)
		}
	})

	t.Run("rating_is_exact_mean_of_all_submissions", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")
		other := mustCreatePost(t, e, alice, "unrelated")

		ratings := []int{5, 3, 1, 4, 4, 2, 5}
		sum := 0
		for i, r := range ratings {
			if _, err := e.SubmitComment(ctx, post.ID, bob, "c", r); err != nil {
				t.Fatalf("SubmitComment %d: %v", i, err)
			}
			sum += r
			// Interleave writes on an unrelated post.
			if _, err := e.SubmitComment(ctx, other.ID, carol, "noise", 3); err != nil {
				t.Fatalf("SubmitComment noise %d: %v", i, err)
			}
		}

		got, _ := e.GetPost(ctx, post.ID)
		want := float64(sum) / float64(len(ratings))
		if math.Abs(got.Rating-want) > 1e-9 {
			t.Errorf("Rating = %v, want %v", got.Rating, want)
		}
		if got.RatingCount != len(ratings) {
			t.Errorf("RatingCount = %d, want %d", got.RatingCount, len(ratings))
		}
	})

	// One user rating twice counts twice. The one-rating-per-user rule is
	// aspirational and deliberately not enforced.
	t.Run("same_user_counts_every_time", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")

		for _, r := range []int{5, 1} {
			if _, err := e.SubmitComment(ctx, post.ID, bob, "again", r); err != nil {
				t.Fatalf("SubmitComment: %v", err)
			}
		}
		got, _ := e.GetPost(ctx, post.ID)
		if got.RatingCount != 2 || got.Rating != 3.0 {
			t.Errorf("rating=%v count=%d, want 3.0/2", got.Rating, got.RatingCount)
		}
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("author_only", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")
		comment, err := e.SubmitComment(ctx, post.ID, bob, "mine", 4)
		if err != nil {
			t.Fatalf("SubmitComment: %v", err)
		}

		if err := e.DeleteComment(ctx, comment.ID, carol); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
		if err := e.DeleteComment(ctx, comment.ID, bob); err != nil {
			t.Fatalf("author delete failed: %v", err)
		}
	})

	t.Run("does_not_reverse_post_aggregate", func(t *testing.T) {
		e := newTestEngine(t)
		post := mustCreatePost(t, e, alice, "p")
		comment, err := e.SubmitComment(ctx, post.ID, bob, "short lived", 5)
		if err != nil {
			t.Fatalf("SubmitComment: %v", err)
		}
		if err := e.DeleteComment(ctx, comment.ID, bob); err != nil {
			t.Fatalf("DeleteComment: %v", err)
		}

		got, _ := e.GetPost(ctx, post.ID)
		if got.Rating != 5.0 || got.RatingCount != 1 || got.CommentCount != 1 {
			t.Errorf("deletion must leave the aggregate skewed as-is, got rating=%v count=%d comments=%d",
				got.Rating, got.RatingCount, got.CommentCount)
		}
	})
}
