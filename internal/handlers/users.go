package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/middleware"
)

type UserHandler struct {
	eng *engine.Engine
}

func NewUserHandler(eng *engine.Engine) *UserHandler {
	return &UserHandler{eng: eng}
}

// GetUserProfile returns a user's profile with their posts and edge counts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.Param("id")

	profile, err := h.eng.GetProfile(ctx, uid)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := h.eng.PostsByAuthor(ctx, uid)
	if err != nil {
		respondError(c, err)
		return
	}

	isFollowing := false
	if viewer := middleware.IdentityFrom(c); !viewer.IsZero() {
		for _, f := range profile.Followers {
			if f == viewer.UID {
				isFollowing = true
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"uid":         profile.UID,
			"displayName": profile.DisplayName,
			"photoURL":    profile.PhotoURL,
			"bio":         profile.Bio,
			"joinDate":    profile.JoinDate,
		},
		"posts":           posts,
		"follower_count":  len(profile.Followers),
		"following_count": len(profile.Following),
		"is_following":    isFollowing,
	})
}

// UpdateBio updates the profile bio (PROTECTED, owner only)
func (h *UserHandler) UpdateBio(c *gin.Context) {
	var input struct {
		Bio string `json:"bio" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.eng.UpdateBio(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c), input.Bio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bio updated"})
}

// FollowUser follows a user (PROTECTED)
func (h *UserHandler) FollowUser(c *gin.Context) {
	err := h.eng.Follow(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

// UnfollowUser unfollows a user (PROTECTED)
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	err := h.eng.Unfollow(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}
