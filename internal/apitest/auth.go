package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user domain.User
	hash []byte
}

// CreateUser registers an account directly, bypassing HTTP.
func (s *Server) CreateUser(username, email, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(username, email, password)
}

func (s *Server) createUserLocked(username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", domain.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}
	if _, ok := s.byName[username]; ok {
		return nil, errDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	acc := &account{
		user: domain.User{
			ID:        uuid.New(),
			Username:  username,
			Email:     email,
			Role:      domain.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		},
		hash: hash,
	}
	s.users[acc.user.ID] = acc
	s.byName[username] = acc.user.ID

	u := acc.user
	return &u, nil
}

// SetRole changes a user's role.
func (s *Server) SetRole(id uuid.UUID, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.users[id]; ok {
		acc.user.Role = role
	}
}

// IssueToken signs a token for the user that expires after ttl. A negative
// ttl yields an already-expired token.
func (s *Server) IssueToken(id uuid.UUID, ttl time.Duration) string {
	token, err := s.signToken(id, ttl)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) signToken(id uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": id.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// authenticate resolves the bearer token on r to a user.
func (s *Server) authenticate(r *http.Request) (*domain.User, string, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, "", domain.ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, "", domain.ErrUnauthorized
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return nil, "", domain.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, "", domain.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[raw] {
		return nil, "", domain.ErrUnauthorized
	}
	acc, ok := s.users[id]
	if !ok {
		return nil, "", domain.ErrUnauthorized
	}
	u := acc.user
	return &u, raw, nil
}

var errDuplicateUsername = errors.New("username already exists")

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := s.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errDuplicateUsername):
			writeError(w, http.StatusConflict, "User already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	s.mu.Lock()
	var acc *account
	if id, ok := s.byName[req.Username]; ok {
		acc = s.users[id]
	}
	s.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.signToken(acc.user.ID, 24*time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, raw, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.mu.Lock()
	s.revoked[raw] = true
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
