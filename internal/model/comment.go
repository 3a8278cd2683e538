package model

import "time"

// Comment is a text comment attached to a video.
type Comment struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CommentRequest is the body of comment create and update.
type CommentRequest struct {
	Text string `json:"text"`
}
