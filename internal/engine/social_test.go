package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

func TestSyncProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("first_sign_in_creates_profile", func(t *testing.T) {
		e := newTestEngine(t)
		profile := mustSyncProfile(t, e, alice)

		if profile.UID != alice.UID || profile.DisplayName != "Alice" {
			t.Errorf("profile = %+v", profile)
		}
		if profile.Bio != "Hello, I am new here!" {
			t.Errorf("Bio = %q, want the default greeting", profile.Bio)
		}
		if !strings.Contains(profile.PhotoURL, "dicebear.com") || !strings.Contains(profile.PhotoURL, alice.UID) {
			t.Errorf("PhotoURL = %q, want a dicebear URL seeded by uid", profile.PhotoURL)
		}
		if profile.Followers == nil || profile.Following == nil {
			t.Error("edge sets must start as empty, not nil")
		}
	})

	t.Run("later_sign_in_refreshes_provider_fields", func(t *testing.T) {
		e := newTestEngine(t)
		mustSyncProfile(t, e, alice)

		renamed := alice
		renamed.DisplayName = "Alice B."
		profile := mustSyncProfile(t, e, renamed)
		if profile.DisplayName != "Alice B." {
			t.Errorf("DisplayName = %q, want refreshed name", profile.DisplayName)
		}

		// Bio set by the user survives a re-sync.
		stored, err := e.GetProfile(ctx, alice.UID)
		if err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if stored.Bio != "Hello, I am new here!" {
			t.Errorf("Bio = %q, re-sync must not clobber it", stored.Bio)
		}
	})

	t.Run("anonymous_is_unauthorized", func(t *testing.T) {
		e := newTestEngine(t)
		if _, err := e.SyncProfile(ctx, models.Identity{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestUpdateBio(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	mustSyncProfile(t, e, alice)

	if err := e.UpdateBio(ctx, alice.UID, bob, "hijack"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if err := e.UpdateBio(ctx, alice.UID, alice, "gopher at large"); err != nil {
		t.Fatalf("UpdateBio: %v", err)
	}
	profile, _ := e.GetProfile(ctx, alice.UID)
	if profile.Bio != "gopher at large" {
		t.Errorf("Bio = %q", profile.Bio)
	}
}

func TestFollowUnfollow(t *testing.T) {
	ctx := context.Background()

	t.Run("edge_lands_on_both_documents", func(t *testing.T) {
		e := newTestEngine(t)
		mustSyncProfile(t, e, alice)
		mustSyncProfile(t, e, bob)

		if err := e.Follow(ctx, alice, bob.UID); err != nil {
			t.Fatalf("Follow: %v", err)
		}

		a, _ := e.GetProfile(ctx, alice.UID)
		b, _ := e.GetProfile(ctx, bob.UID)
		if !contains(a.Following, bob.UID) {
			t.Error("alice.following must contain bob")
		}
		if !contains(b.Followers, alice.UID) {
			t.Error("bob.followers must contain alice")
		}
	})

	t.Run("follow_twice_is_idempotent", func(t *testing.T) {
		e := newTestEngine(t)
		mustSyncProfile(t, e, alice)
		mustSyncProfile(t, e, bob)

		for i := 0; i < 2; i++ {
			if err := e.Follow(ctx, alice, bob.UID); err != nil {
				t.Fatalf("Follow #%d: %v", i+1, err)
			}
		}

		a, _ := e.GetProfile(ctx, alice.UID)
		b, _ := e.GetProfile(ctx, bob.UID)
		if len(a.Following) != 1 || len(b.Followers) != 1 {
			t.Errorf("sets must not grow on repeat: following=%v followers=%v", a.Following, b.Followers)
		}
	})

	t.Run("unfollow_removes_both_sides", func(t *testing.T) {
		e := newTestEngine(t)
		mustSyncProfile(t, e, alice)
		mustSyncProfile(t, e, bob)

		if err := e.Follow(ctx, alice, bob.UID); err != nil {
			t.Fatalf("Follow: %v", err)
		}
		if err := e.Unfollow(ctx, alice, bob.UID); err != nil {
			t.Fatalf("Unfollow: %v", err)
		}

		a, _ := e.GetProfile(ctx, alice.UID)
		b, _ := e.GetProfile(ctx, bob.UID)
		if len(a.Following) != 0 || len(b.Followers) != 0 {
			t.Errorf("edge still present: following=%v followers=%v", a.Following, b.Followers)
		}
	})

	t.Run("self_follow_rejected", func(t *testing.T) {
		e := newTestEngine(t)
		mustSyncProfile(t, e, alice)
		if err := e.Follow(ctx, alice, alice.UID); !errors.Is(err, ErrSelfFollow) {
			t.Fatalf("expected ErrSelfFollow, got %v", err)
		}
	})

	t.Run("missing_target_is_not_found", func(t *testing.T) {
		e := newTestEngine(t)
		mustSyncProfile(t, e, alice)
		if err := e.Follow(ctx, alice, "u-ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepairFollowGraph(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	mustSyncProfile(t, e, alice)
	mustSyncProfile(t, e, bob)
	mustSyncProfile(t, e, carol)

	users := e.store.Collection(store.Users)

	// Simulate the partial-failure window: alice claims to follow bob but
	// bob's followers never got the mirror write; carol carries a follower
	// entry nobody owns.
	if err := users.Update(ctx, alice.UID, map[string]any{"following": store.ArrayUnion(bob.UID)}); err != nil {
		t.Fatalf("seed asymmetry: %v", err)
	}
	if err := users.Update(ctx, carol.UID, map[string]any{"followers": store.ArrayUnion("u-nobody")}); err != nil {
		t.Fatalf("seed orphan follower: %v", err)
	}

	repaired, err := e.RepairFollowGraph(ctx)
	if err != nil {
		t.Fatalf("RepairFollowGraph: %v", err)
	}
	if repaired != 2 {
		t.Errorf("repaired = %d, want 2", repaired)
	}

	b, _ := e.GetProfile(ctx, bob.UID)
	if !contains(b.Followers, alice.UID) {
		t.Error("missing mirror edge not healed")
	}
	c, _ := e.GetProfile(ctx, carol.UID)
	if contains(c.Followers, "u-nobody") {
		t.Error("orphan follower entry not removed")
	}

	// A healthy graph needs no repairs.
	repaired, err = e.RepairFollowGraph(ctx)
	if err != nil {
		t.Fatalf("RepairFollowGraph: %v", err)
	}
	if repaired != 0 {
		t.Errorf("second sweep repaired %d, want 0", repaired)
	}
}
