package listing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
)

// PostLister lists posts.
type PostLister interface {
	ListPosts(ctx context.Context, params domain.PageParams) (*domain.Page[domain.Post], error)
}

// CommentLister lists a post's comments.
type CommentLister interface {
	ListComments(ctx context.Context, postID uuid.UUID, params domain.PageParams) (*domain.Page[domain.Comment], error)
}

// NewPostList returns the controller for the post index, newest first.
func NewPostList(l PostLister, logger *slog.Logger) *Controller[domain.Post] {
	return New[domain.Post](l.ListPosts, domain.SortCreatedDesc, logger)
}

// NewCommentList returns a controller for one post's comments, oldest first.
// Each post gets its own controller and therefore its own page cursor.
func NewCommentList(l CommentLister, postID uuid.UUID, logger *slog.Logger) *Controller[domain.Comment] {
	fetch := func(ctx context.Context, params domain.PageParams) (*domain.Page[domain.Comment], error) {
		return l.ListComments(ctx, postID, params)
	}
	return New[domain.Comment](fetch, domain.SortCreatedAsc, logger)
}
