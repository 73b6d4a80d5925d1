package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
)

const postsPath = "/api/v1/posts"

func postPath(id uuid.UUID) string {
	return postsPath + "/" + id.String()
}

// ListPosts returns one page of posts.
func (a *API) ListPosts(ctx context.Context, params domain.PageParams) (*domain.Page[domain.Post], error) {
	var env pageEnvelope[domain.Post]
	if err := a.t.Send(ctx, http.MethodGet, postsPath, pageQuery(params), nil, &env); err != nil {
		return nil, err
	}
	return env.page(), nil
}

// GetPost returns a single post.
func (a *API) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post := &domain.Post{}
	if err := a.t.Send(ctx, http.MethodGet, postPath(id), nil, nil, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePost creates a post and returns the stored copy.
func (a *API) CreatePost(ctx context.Context, p domain.NewPost) (*domain.Post, error) {
	post := &domain.Post{}
	if err := a.t.Send(ctx, http.MethodPost, postsPath, nil, p, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost applies a partial update. Fields left nil in patch are not sent.
func (a *API) UpdatePost(ctx context.Context, id uuid.UUID, patch domain.PostPatch) (*domain.Post, error) {
	post := &domain.Post{}
	if err := a.t.Send(ctx, http.MethodPut, postPath(id), nil, patch, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post.
func (a *API) DeletePost(ctx context.Context, id uuid.UUID) error {
	return a.t.Send(ctx, http.MethodDelete, postPath(id), nil, nil, nil)
}
