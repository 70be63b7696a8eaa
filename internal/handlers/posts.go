package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
)

type PostHandler struct {
	eng *engine.Engine
}

func NewPostHandler(eng *engine.Engine) *PostHandler {
	return &PostHandler{eng: eng}
}

// GetPosts returns the composed feed. Query params: search, sort
// (recency|popularity), scope (global|following).
func (h *PostHandler) GetPosts(c *gin.Context) {
	opts := engine.FeedOptions{
		Search: c.Query("search"),
		Sort:   engine.SortKey(c.DefaultQuery("sort", string(engine.SortRecency))),
		Scope:  engine.Scope(c.DefaultQuery("scope", string(engine.ScopeGlobal))),
		Viewer: middleware.IdentityFrom(c),
	}

	posts, err := h.eng.ComposeFeed(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetTrending returns the top viewed posts within the trending window.
func (h *PostHandler) GetTrending(c *gin.Context) {
	k, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || k < 1 {
		k = 5
	}

	posts, err := h.eng.Trending(c.Request.Context(), k)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.eng.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.eng.CreatePost(c.Request.Context(), middleware.IdentityFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post (PROTECTED, author only)
func (h *PostHandler) DeletePost(c *gin.Context) {
	err := h.eng.DeletePost(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// RecordView bumps the view counter. Failures are telemetry-grade and never
// reported to the client.
func (h *PostHandler) RecordView(c *gin.Context) {
	_ = h.eng.IncrementViews(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// GetUserPosts returns all posts by a specific user
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	posts, err := h.eng.PostsByAuthor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
