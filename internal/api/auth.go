package api

import (
	"context"
	"net/http"

	"github.com/msomdec/blog-desk/internal/domain"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. It does not fetch the profile.
// POST /auth/login
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := a.t.Send(ctx, http.MethodPost, "/auth/login", nil, credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &domain.Error{Kind: domain.KindTransport, Message: "malformed response from server: missing token"}
	}
	return resp.Token, nil
}

// Register creates an account. It does not log in.
// POST /auth/register
func (a *API) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	user := &domain.User{}
	err := a.t.Send(ctx, http.MethodPost, "/auth/register", nil, credentials{Username: username, Email: email, Password: password}, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the current token on the server.
// POST /auth/logout
func (a *API) Logout(ctx context.Context) error {
	return a.t.Send(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// CurrentUser returns the user owning the current token.
// GET /auth/me
func (a *API) CurrentUser(ctx context.Context) (*domain.User, error) {
	user := &domain.User{}
	if err := a.t.Send(ctx, http.MethodGet, "/auth/me", nil, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}
