package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/store"
)

const defaultBio = "Hello, I am new here!"

// SyncProfile creates the user's profile document on first sign-in and
// refreshes provider-supplied fields on later ones.
func (e *Engine) SyncProfile(ctx context.Context, ident models.Identity) (models.UserProfile, error) {
	if ident.IsZero() {
		return models.UserProfile{}, ErrUnauthorized
	}

	users := e.store.Collection(store.Users)

	var profile models.UserProfile
	err := users.Get(ctx, ident.UID, &profile)
	if errors.Is(err, ErrNotFound) {
		profile = models.UserProfile{
			UID:         ident.UID,
			Email:       ident.Email,
			DisplayName: displayName(ident),
			PhotoURL:    AvatarURL(ident.UID),
			Bio:         defaultBio,
			JoinDate:    time.Now().UTC(),
			Followers:   []string{},
			Following:   []string{},
		}
		if err := users.Set(ctx, ident.UID, profile); err != nil {
			return models.UserProfile{}, err
		}
		return profile, nil
	}
	if err != nil {
		return models.UserProfile{}, err
	}

	fields := map[string]any{"email": ident.Email}
	if ident.DisplayName != "" {
		fields["displayName"] = ident.DisplayName
	}
	if err := users.Update(ctx, ident.UID, fields); err != nil {
		return models.UserProfile{}, err
	}
	if ident.DisplayName != "" {
		profile.DisplayName = ident.DisplayName
	}
	profile.Email = ident.Email
	return profile, nil
}

// GetProfile returns one user profile by uid.
func (e *Engine) GetProfile(ctx context.Context, uid string) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := e.store.Collection(store.Users).Get(ctx, uid, &profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// ProfileByEmail finds the profile registered under an email address.
func (e *Engine) ProfileByEmail(ctx context.Context, email string) (models.UserProfile, error) {
	q := store.NewQuery().Where("email", store.OpEqual, email).Limit(1)
	docs, err := e.store.Collection(store.Users).Query(ctx, q)
	if err != nil {
		return models.UserProfile{}, err
	}
	if len(docs) == 0 {
		return models.UserProfile{}, ErrNotFound
	}

	var profile models.UserProfile
	if err := docs[0].Decode(&profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// RegisterProfile creates a profile for email/password registration.
func (e *Engine) RegisterProfile(ctx context.Context, displayName, email, passwordHash string) (models.UserProfile, error) {
	if _, err := e.ProfileByEmail(ctx, email); err == nil {
		return models.UserProfile{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return models.UserProfile{}, err
	}

	uid := uuid.NewString()
	profile := models.UserProfile{
		UID:          uid,
		Email:        email,
		DisplayName:  displayName,
		PhotoURL:     AvatarURL(uid),
		Bio:          defaultBio,
		JoinDate:     time.Now().UTC(),
		Followers:    []string{},
		Following:    []string{},
		PasswordHash: passwordHash,
	}
	if err := e.store.Collection(store.Users).Set(ctx, uid, profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// UpdateBio changes a user's bio, owner-only.
func (e *Engine) UpdateBio(ctx context.Context, uid string, ident models.Identity, bio string) error {
	if ident.IsZero() {
		return ErrUnauthorized
	}
	if ident.UID != uid {
		return ErrPermissionDenied
	}
	return e.store.Collection(store.Users).Update(ctx, uid, map[string]any{"bio": bio})
}

// Follow adds the directed edge ident -> targetUID, mirrored across both
// profile documents: target joins the follower's following set, follower
// joins the target's followers set. The two writes are independent, not one
// transaction; a failure between them leaves a one-sided edge until
// RepairFollowGraph runs. Both mutations are idempotent set unions.
func (e *Engine) Follow(ctx context.Context, ident models.Identity, targetUID string) error {
	if ident.IsZero() {
		return ErrUnauthorized
	}
	if ident.UID == targetUID {
		return ErrSelfFollow
	}

	users := e.store.Collection(store.Users)
	if err := users.Update(ctx, ident.UID, map[string]any{
		"following": store.ArrayUnion(targetUID),
	}); err != nil {
		return err
	}
	return users.Update(ctx, targetUID, map[string]any{
		"followers": store.ArrayUnion(ident.UID),
	})
}

// Unfollow removes the edge from both sides, same two-write shape as Follow.
func (e *Engine) Unfollow(ctx context.Context, ident models.Identity, targetUID string) error {
	if ident.IsZero() {
		return ErrUnauthorized
	}

	users := e.store.Collection(store.Users)
	if err := users.Update(ctx, ident.UID, map[string]any{
		"following": store.ArrayRemove(targetUID),
	}); err != nil {
		return err
	}
	return users.Update(ctx, targetUID, map[string]any{
		"followers": store.ArrayRemove(ident.UID),
	})
}

// RepairFollowGraph sweeps every profile and heals asymmetric follow edges.
// The following set is treated as the statement of intent: a following entry
// without the mirrored follower entry gets the mirror added (or is dropped
// when the target no longer exists), and a follower entry nobody claims to
// own is removed. Returns the number of repairs applied.
func (e *Engine) RepairFollowGraph(ctx context.Context) (int, error) {
	docs, err := e.store.Collection(store.Users).Query(ctx, store.NewQuery())
	if err != nil {
		return 0, err
	}

	profiles := make(map[string]models.UserProfile, len(docs))
	for _, d := range docs {
		var p models.UserProfile
		if err := d.Decode(&p); err != nil {
			return 0, err
		}
		profiles[p.UID] = p
	}

	users := e.store.Collection(store.Users)
	repaired := 0

	for uid, p := range profiles {
		for _, target := range p.Following {
			other, ok := profiles[target]
			if !ok {
				if err := users.Update(ctx, uid, map[string]any{
					"following": store.ArrayRemove(target),
				}); err != nil {
					return repaired, err
				}
				repaired++
				continue
			}
			if !contains(other.Followers, uid) {
				if err := users.Update(ctx, target, map[string]any{
					"followers": store.ArrayUnion(uid),
				}); err != nil {
					return repaired, err
				}
				repaired++
			}
		}

		for _, follower := range p.Followers {
			other, ok := profiles[follower]
			if ok && contains(other.Following, uid) {
				continue
			}
			if err := users.Update(ctx, uid, map[string]any{
				"followers": store.ArrayRemove(follower),
			}); err != nil {
				return repaired, err
			}
			repaired++
		}
	}
	return repaired, nil
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
