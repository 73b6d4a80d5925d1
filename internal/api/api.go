// Package api exposes one typed operation per blog server endpoint. It adds
// no error kinds of its own: every failure is the *domain.Error produced by
// the transport.
package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/msomdec/blog-desk/internal/domain"
)

// Transport is the HTTP client adapter the API is built on.
type Transport interface {
	Send(ctx context.Context, method, path string, query url.Values, body, out any) error
	SetAuthToken(token string)
}

// API is the typed client for the blog server.
type API struct {
	t Transport
}

// New creates an API over the given transport.
func New(t Transport) *API {
	return &API{t: t}
}

// SetAuthToken forwards the bearer token to the transport. Only the session
// store calls this.
func (a *API) SetAuthToken(token string) {
	a.t.SetAuthToken(token)
}

// pageEnvelope is the server's list response shape.
type pageEnvelope[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Total  int    `json:"total"`
		Page   int    `json:"page"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
		Sort   string `json:"sort"`
	} `json:"pagination"`
}

func (e *pageEnvelope[T]) page() *domain.Page[T] {
	items := e.Data
	if items == nil {
		items = []T{}
	}
	return &domain.Page[T]{
		Items:      items,
		TotalCount: e.Pagination.Total,
		PageNumber: e.Pagination.Page,
		PageSize:   e.Pagination.Limit,
	}
}

// pageQuery encodes the non-zero pagination parameters.
func pageQuery(p domain.PageParams) url.Values {
	q := url.Values{}
	if p.Page >= 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit >= 1 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort.Valid() {
		q.Set("sort", string(p.Sort))
	}
	return q
}
