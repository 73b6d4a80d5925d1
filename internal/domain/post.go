package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  uuid.UUID `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPost is the creation payload for a post.
type NewPost struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	AuthorID uuid.UUID `json:"authorId"`
}

// PostPatch is a partial post update. Nil fields are left untouched on the server.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}
