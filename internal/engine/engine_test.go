package engine

import (
	"context"
	"testing"
	"time"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

var (
	alice = models.Identity{UID: "u-alice", DisplayName: "Alice", Email: "alice@example.com"}
	bob   = models.Identity{UID: "u-bob", DisplayName: "Bob", Email: "bob@example.com"}
	carol = models.Identity{UID: "u-carol", DisplayName: "Carol", Email: "carol@example.com"}
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := store.Open("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st)
}

func mustCreatePost(t *testing.T, e *Engine, ident models.Identity, title string) models.Post {
	t.Helper()
	post, err := e.CreatePost(context.Background(), ident, models.CreatePostRequest{
		Title:   title,
		Content: "content of " + title,
	})
	if err != nil {
		t.Fatalf("CreatePost %q: %v", title, err)
	}
	return post
}

// seedPost writes a post document directly, for tests that need full control
// over creation time, views or aggregates.
func seedPost(t *testing.T, e *Engine, post models.Post) {
	t.Helper()
	if err := e.store.Collection(store.Posts).Set(context.Background(), post.ID, post); err != nil {
		t.Fatalf("seed post %s: %v", post.ID, err)
	}
}

func mustSyncProfile(t *testing.T, e *Engine, ident models.Identity) models.UserProfile {
	t.Helper()
	profile, err := e.SyncProfile(context.Background(), ident)
	if err != nil {
		t.Fatalf("SyncProfile %s: %v", ident.UID, err)
	}
	return profile
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}
