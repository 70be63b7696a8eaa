package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
)

type CommentHandler struct {
	eng *engine.Engine
}

func NewCommentHandler(eng *engine.Engine) *CommentHandler {
	return &CommentHandler{eng: eng}
}

// GetComments returns a post's comments. Query param order: newest|hottest;
// without it comments arrive oldest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	comments, err := h.eng.CommentsForPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if order := c.Query("order"); order != "" {
		comments = engine.SortComments(comments, engine.CommentOrder(order))
	}
	c.JSON(http.StatusOK, comments)
}

// GetStats returns the reconciled rating statistics for a post.
func (h *CommentHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	postID := c.Param("id")

	post, err := h.eng.GetPost(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	comments, err := h.eng.CommentsForPost(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, engine.ComputeStats(post, comments))
}

// CreateComment submits a rated comment on a post (PROTECTED)
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.eng.SubmitComment(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c), input.Text, input.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes a comment (PROTECTED, author only). The post's
// rating aggregate is not adjusted.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	err := h.eng.DeleteComment(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// LikeComment increments a comment's likes and refreshes the post's top
// comment (PROTECTED)
func (h *CommentHandler) LikeComment(c *gin.Context) {
	comment, err := h.eng.LikeComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// CreateReply appends a reply to a comment (PROTECTED)
func (h *CommentHandler) CreateReply(c *gin.Context) {
	var input struct {
		PostID      string `json:"postId" binding:"required"`
		Text        string `json:"text" binding:"required"`
		ReplyToName string `json:"replyToName"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.eng.AddReply(c.Request.Context(), input.PostID, c.Param("id"), middleware.IdentityFrom(c), input.Text, input.ReplyToName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// LikeReply likes one embedded reply, identified by its
// (createdAt, authorId, text) tuple (PROTECTED)
func (h *CommentHandler) LikeReply(c *gin.Context) {
	var input struct {
		AuthorID  string    `json:"authorId" binding:"required"`
		Text      string    `json:"text" binding:"required"`
		CreatedAt time.Time `json:"createdAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := models.Reply{AuthorID: input.AuthorID, Text: input.Text, CreatedAt: input.CreatedAt}
	reply, err := h.eng.LikeReply(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
