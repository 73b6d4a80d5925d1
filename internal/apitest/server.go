// Package apitest runs an in-memory implementation of the blog server's REST
// contract for tests. Passwords are bcrypt-hashed, bearer tokens are HS256
// JWTs revoked on logout, and pagination follows the production server's
// defaults and limits.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
)

const testSecret = "apitest-secret-key-for-hs256-signing"

type failure struct {
	status  int
	message string
}

// Server is an httptest.Server speaking the blog REST contract.
type Server struct {
	URL string

	srv    *httptest.Server
	secret []byte

	mu       sync.Mutex
	users    map[uuid.UUID]*account
	byName   map[string]uuid.UUID
	posts    []*domain.Post
	comments map[uuid.UUID][]*domain.Comment
	revoked  map[string]bool
	failures map[string]failure
	calls    map[string]int
	base     time.Time
	tick     int
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:   []byte(testSecret),
		users:    make(map[uuid.UUID]*account),
		byName:   make(map[string]uuid.UUID),
		comments: make(map[uuid.UUID][]*domain.Comment),
		revoked:  make(map[string]bool),
		failures: make(map[string]failure),
		calls:    make(map[string]int),
		base:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("GET /api/v1/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/v1/posts", s.handleCreatePost)
	mux.HandleFunc("GET /api/v1/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PUT /api/v1/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /api/v1/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /api/v1/posts/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /api/v1/posts/{id}/comments", s.handleCreateComment)

	s.srv = httptest.NewServer(s.intercept(mux))
	s.URL = s.srv.URL
	t.Cleanup(s.Close)
	return s
}

// Close shuts the server down. Subsequent requests fail at the transport level.
func (s *Server) Close() {
	s.srv.Close()
}

// Fail makes the next request matching method and path return status. An
// empty message produces a body without the {"error": ...} shape.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Calls returns how many requests matched method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.calls[key]++
		f, ok := s.failures[key]
		if ok {
			delete(s.failures, key)
		}
		s.mu.Unlock()

		if ok {
			if f.message == "" {
				http.Error(w, http.StatusText(f.status), f.status)
				return
			}
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// now returns a strictly increasing timestamp so creation order is stable.
// Callers must hold s.mu.
func (s *Server) now() time.Time {
	s.tick++
	return s.base.Add(time.Duration(s.tick) * time.Second)
}
