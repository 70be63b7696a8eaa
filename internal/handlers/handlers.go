package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openboard/backend/internal/engine"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	User    *UserHandler
	Rating  *RatingHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(eng),
		Post:    NewPostHandler(eng),
		Comment: NewCommentHandler(eng),
		User:    NewUserHandler(eng),
		Rating:  NewRatingHandler(eng),
	}
}

// respondError maps engine errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, engine.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign-in required"})
	case errors.Is(err, engine.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, engine.ErrInvalidArgument),
		errors.Is(err, engine.ErrAlreadyExists),
		errors.Is(err, engine.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
