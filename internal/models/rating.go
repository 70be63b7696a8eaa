package models

// Rating is a standalone star rating, one per (post, user), last write wins.
// Distinct from the rating carried on each comment.
type Rating struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
	Stars  int    `json:"stars"` // 1-5
}

type SetRatingRequest struct {
	Stars int `json:"stars" binding:"required,min=1,max=5"`
}
