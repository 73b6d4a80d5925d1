package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
)

func commentsPath(postID uuid.UUID) string {
	return postPath(postID) + "/comments"
}

// ListComments returns one page of a post's comments.
func (a *API) ListComments(ctx context.Context, postID uuid.UUID, params domain.PageParams) (*domain.Page[domain.Comment], error) {
	var env pageEnvelope[domain.Comment]
	if err := a.t.Send(ctx, http.MethodGet, commentsPath(postID), pageQuery(params), nil, &env); err != nil {
		return nil, err
	}
	return env.page(), nil
}

// CreateComment adds a comment to c.PostID.
func (a *API) CreateComment(ctx context.Context, c domain.NewComment) (*domain.Comment, error) {
	comment := &domain.Comment{}
	if err := a.t.Send(ctx, http.MethodPost, commentsPath(c.PostID), nil, c, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
