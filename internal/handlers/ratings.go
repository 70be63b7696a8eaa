package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
)

type RatingHandler struct {
	eng *engine.Engine
}

func NewRatingHandler(eng *engine.Engine) *RatingHandler {
	return &RatingHandler{eng: eng}
}

// GetRating returns the post's average star rating and, for signed-in
// viewers, their own rating.
func (h *RatingHandler) GetRating(c *gin.Context) {
	ctx := c.Request.Context()
	postID := c.Param("id")

	average, err := h.eng.AverageRating(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	own := 0
	if viewer := middleware.IdentityFrom(c); !viewer.IsZero() {
		own, err = h.eng.UserRating(ctx, postID, viewer.UID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"average":    average,
		"userRating": own,
	})
}

// SetRating upserts the caller's star rating, last write wins (PROTECTED)
func (h *RatingHandler) SetRating(c *gin.Context) {
	var input models.SetRatingRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.eng.SetRating(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c), input.Stars)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating recorded"})
}
