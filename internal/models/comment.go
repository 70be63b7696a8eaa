package models

import "time"

// Reply lives embedded in its comment's document and carries no id of its
// own; callers identify a reply by the (CreatedAt, AuthorID, Text) tuple.
type Reply struct {
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       int       `json:"likes"`
	ReplyToName string    `json:"replyToName,omitempty"`
}

// Matches reports whether two replies denote the same embedded record.
// First exact match wins when a comment holds duplicate tuples.
func (r Reply) Matches(other Reply) bool {
	return r.CreatedAt.Equal(other.CreatedAt) &&
		r.AuthorID == other.AuthorID &&
		r.Text == other.Text
}

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"` // 1-5, folded into the post aggregate at creation
	CreatedAt  time.Time `json:"createdAt"`
	Likes      int       `json:"likes"`
	Replies    []Reply   `json:"replies"`
}

type CreateCommentRequest struct {
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

type CreateReplyRequest struct {
	Text        string `json:"text" binding:"required"`
	ReplyToName string `json:"replyToName"`
}
