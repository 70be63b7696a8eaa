package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

// SortKey selects the feed ordering.
type SortKey string

const (
	SortRecency    SortKey = "recency"    // creation time descending
	SortPopularity SortKey = "popularity" // like count descending
)

// Scope selects which authors the feed draws from.
type Scope string

const (
	ScopeGlobal    Scope = "global"
	ScopeFollowing Scope = "following"
)

// Trending window parameters: rank by views within the most recent
// trendingWindow posts no older than trendingMaxAge. The windowed fetch
// avoids needing a composite (recency, views) index in the store.
const (
	trendingWindow = 50
	trendingMaxAge = 7 * 24 * time.Hour
)

type FeedOptions struct {
	Search string
	Sort   SortKey
	Scope  Scope
	// Viewer is only needed for the following-only scope.
	Viewer models.Identity
}

// ComposeFeed merges scope selection, search filtering and sorting into one
// ranked post list.
//
// For the following-only scope an empty following set yields an empty feed,
// not an error. The author lookup is capped at the store's in-filter limit:
// when the viewer follows more than 10 users only the first 10 are
// considered. That is a known scaling gap, kept visible rather than masked.
func (e *Engine) ComposeFeed(ctx context.Context, opts FeedOptions) ([]models.Post, error) {
	q := store.NewQuery().OrderBy("createdAt", true)

	if opts.Scope == ScopeFollowing {
		if opts.Viewer.IsZero() {
			return nil, ErrUnauthorized
		}

		var viewer models.UserProfile
		if err := e.store.Collection(store.Users).Get(ctx, opts.Viewer.UID, &viewer); err != nil {
			return nil, err
		}
		if len(viewer.Following) == 0 {
			return []models.Post{}, nil
		}

		authors := viewer.Following
		if len(authors) > store.MaxInValues {
			authors = authors[:store.MaxInValues]
		}
		q = q.Where("authorId", store.OpIn, authors)
	}

	docs, err := e.store.Collection(store.Posts).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	posts, err := decodePosts(docs)
	if err != nil {
		return nil, err
	}

	if term := strings.ToLower(strings.TrimSpace(opts.Search)); term != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if strings.Contains(strings.ToLower(p.Title), term) ||
				strings.Contains(strings.ToLower(p.Content), term) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	switch opts.Sort {
	case SortPopularity:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].Likes > posts[j].Likes
		})
	default:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}
	return posts, nil
}

// Trending returns the top k posts by view count among the most recent
// trendingWindow posts created within the last seven days.
func (e *Engine) Trending(ctx context.Context, k int) ([]models.Post, error) {
	q := store.NewQuery().OrderBy("createdAt", true).Limit(trendingWindow)
	docs, err := e.store.Collection(store.Posts).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	posts, err := decodePosts(docs)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-trendingMaxAge)
	recent := posts[:0]
	for _, p := range posts {
		if p.CreatedAt.After(cutoff) {
			recent = append(recent, p)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Views > recent[j].Views
	})
	if len(recent) > k {
		recent = recent[:k]
	}
	return recent, nil
}

// PostsByAuthor returns one author's posts, newest first.
func (e *Engine) PostsByAuthor(ctx context.Context, uid string) ([]models.Post, error) {
	q := store.NewQuery().
		Where("authorId", store.OpEqual, uid).
		OrderBy("createdAt", true)

	docs, err := e.store.Collection(store.Posts).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodePosts(docs)
}

// WatchFeed recomputes the composed feed after every committed write to the
// posts collection and delivers the full result each time. The feed is always
// rebuilt from the latest store snapshot; no client-side copy is
// authoritative. Cancel the returned subscription to stop delivery.
func (e *Engine) WatchFeed(ctx context.Context, opts FeedOptions) (<-chan []models.Post, func(), error) {
	sub, err := e.store.Collection(store.Posts).Subscribe(ctx, store.NewQuery())
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []models.Post, 1)
	go func() {
		defer close(out)
		for range sub.Snapshots {
			posts, err := e.ComposeFeed(ctx, opts)
			if err != nil {
				return
			}
			select {
			case out <- posts:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Cancel, nil
}

// WatchComments delivers the full comment set of a post, oldest first, after
// every committed write to the comments collection.
func (e *Engine) WatchComments(ctx context.Context, postID string) (<-chan []models.Comment, func(), error) {
	q := store.NewQuery().
		Where("postId", store.OpEqual, postID).
		OrderBy("createdAt", false)

	sub, err := e.store.Collection(store.Comments).Subscribe(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []models.Comment, 1)
	go func() {
		defer close(out)
		for docs := range sub.Snapshots {
			comments, err := decodeComments(docs)
			if err != nil {
				return
			}
			select {
			case out <- comments:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Cancel, nil
}

func decodePosts(docs []store.Document) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		var p models.Post
		if err := d.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode post %s: %w", d.ID, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}
