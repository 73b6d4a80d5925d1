package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply attached to a post.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"postId"`
	Content   string    `json:"content"`
	AuthorID  uuid.UUID `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewComment is the creation payload for a comment.
type NewComment struct {
	PostID   uuid.UUID `json:"postId"`
	Content  string    `json:"content"`
	AuthorID uuid.UUID `json:"authorId"`
}
