package models

import "time"

// TopComment is the denormalized snapshot of a post's most-liked comment,
// cached on the post document so list views never scan the comments collection.
type TopComment struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	AuthorName string `json:"authorName"`
	Likes      int    `json:"likes"`
}

type Post struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	AuthorID     string      `json:"authorId"`
	AuthorName   string      `json:"authorName"`
	AuthorAvatar string      `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	CommentCount int         `json:"commentCount"`
	Likes        int         `json:"likes"`
	Rating       float64     `json:"rating"`      // running mean of comment ratings, 0-5
	RatingCount  int         `json:"ratingCount"` // number of ratings folded into Rating
	Views        int         `json:"views"`
	Tags         []string    `json:"tags,omitempty"`
	TopComment   *TopComment `json:"topComment,omitempty"`
}

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}
