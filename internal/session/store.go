// Package session owns the client's authentication state: the current user,
// the persisted bearer token and the token set on the HTTP client.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/observe"
)

// cleanupTimeout bounds local token cleanup. Cleanup runs detached from the
// caller's context so a cancelled request cannot leave a token on disk.
const cleanupTimeout = 5 * time.Second

// State is the authentication state of the process.
type State int

const (
	// StateUnknown holds from startup until Restore has checked the persisted token.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Backend is the subset of the resource API the store drives.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	SetAuthToken(token string)
}

// Snapshot is an immutable view of the session published to observers.
type Snapshot struct {
	State State
	User  *domain.User
}

// IsAuthenticated reports whether the snapshot holds a user.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil
}

// Store is the process-wide session. Transitions are serialized: each of
// Restore, Login, Register and Logout holds the operation lock for its whole
// run, so a logout issued during a login runs after it and wins. Reads never
// wait for a transition in flight.
type Store struct {
	backend Backend
	tokens  domain.TokenStore
	logger  *slog.Logger
	clock   func() time.Time

	op       sync.Mutex
	restored bool
	token    string // mirror of the persisted token, guarded by op

	mu    sync.RWMutex
	state State
	user  *domain.User

	subs observe.Subject[Snapshot]
}

// Option customizes store construction.
type Option func(*Store)

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control token expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a store in StateUnknown. Call Restore once at startup.
func New(backend Backend, tokens domain.TokenStore, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		tokens:  tokens,
		logger:  slog.Default(),
		clock:   time.Now,
		state:   StateUnknown,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Snapshot returns the current state and user.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, User: copyUser(s.user)}
}

// State returns the current authentication state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the current user, or nil when not authenticated.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Subscribe registers fn to receive a snapshot after every committed
// transition. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.subs.Subscribe(fn)
}

// Restore checks the persisted token and moves the store out of
// StateUnknown. It does its work at most once per store; later calls, and
// calls after a login or logout already settled the state, return nil
// without touching anything. A token the server rejects is discarded and the
// store becomes anonymous; that is not an error. Only storage failures are
// returned.
func (s *Store) Restore(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	if s.restored || s.State() != StateUnknown {
		s.restored = true
		return nil
	}
	s.restored = true

	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.commit(StateAnonymous, nil)
		return fmt.Errorf("load persisted token: %w", err)
	}
	if token == "" {
		s.commit(StateAnonymous, nil)
		return nil
	}

	if tokenExpired(token, s.clock()) {
		s.logger.Info("persisted token expired, discarding")
		return s.discard(ctx)
	}

	s.backend.SetAuthToken(token)
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("restore session failed, discarding token", "error", err)
		return s.discard(ctx)
	}

	s.token = token
	s.commit(StateAuthenticated, user)
	s.logger.Info("session restored", "user", user.Username)
	return nil
}

// discard drops a persisted token that failed restoration.
func (s *Store) discard(ctx context.Context) error {
	s.backend.SetAuthToken("")
	s.token = ""
	ctx, cancel := cleanupContext(ctx)
	defer cancel()
	err := s.tokens.Clear(ctx)
	s.commit(StateAnonymous, nil)
	if err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}
	return nil
}

// Login authenticates with the server and loads the profile. On any failure
// the state, the persisted token and the client token are left as they were
// and the error is returned.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.op.Lock()
	defer s.op.Unlock()

	token, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}

	prev := s.token
	if err := s.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.backend.SetAuthToken(token)

	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		s.rollback(ctx, prev)
		return err
	}

	s.token = token
	s.restored = true
	s.commit(StateAuthenticated, user)
	s.logger.Info("logged in", "user", user.Username)
	return nil
}

// Register creates an account, logs in with the same credentials and
// adopts the user returned by registration without re-fetching it.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	s.op.Lock()
	defer s.op.Unlock()

	user, err := s.backend.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	token, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.backend.SetAuthToken(token)

	s.token = token
	s.restored = true
	s.commit(StateAuthenticated, user)
	s.logger.Info("registered and logged in", "user", user.Username)
	return nil
}

// Logout tells the server to revoke the token, then always clears the
// persisted token, the client token and the user. A failed server call is
// logged and ignored; only a failure to clear local storage is returned.
func (s *Store) Logout(ctx context.Context) (err error) {
	s.op.Lock()
	defer s.op.Unlock()

	defer func() {
		s.backend.SetAuthToken("")
		s.token = ""
		s.restored = true
		cleanupCtx, cancel := cleanupContext(ctx)
		defer cancel()
		if clearErr := s.tokens.Clear(cleanupCtx); clearErr != nil {
			err = fmt.Errorf("clear persisted token: %w", clearErr)
		}
		s.commit(StateAnonymous, nil)
	}()

	if serverErr := s.backend.Logout(ctx); serverErr != nil {
		s.logger.Warn("server logout failed, clearing local session anyway", "error", serverErr)
	}
	return nil
}

// rollback restores the persisted and client token to prev after a failed login.
func (s *Store) rollback(ctx context.Context, prev string) {
	s.backend.SetAuthToken(prev)
	ctx, cancel := cleanupContext(ctx)
	defer cancel()
	var err error
	if prev == "" {
		err = s.tokens.Clear(ctx)
	} else {
		err = s.tokens.Save(ctx, prev)
	}
	if err != nil {
		s.logger.Warn("roll back persisted token", "error", err)
	}
}

func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

func (s *Store) commit(state State, user *domain.User) {
	s.mu.Lock()
	s.state = state
	s.user = copyUser(user)
	snap := Snapshot{State: s.state, User: copyUser(s.user)}
	s.mu.Unlock()

	s.subs.Publish(snap)
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
