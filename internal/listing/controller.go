// Package listing implements the fetch-a-page, track-the-cursor,
// refresh-after-mutation pattern shared by the post list and comment lists.
package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/observe"
)

// Fetcher requests one page of items from the server.
type Fetcher[T any] func(ctx context.Context, params domain.PageParams) (*domain.Page[T], error)

// State is a snapshot of a list controller.
type State[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	TotalCount  int
	Loading     bool
	Err         error
}

// HasPrev reports whether a previous page exists.
func (s State[T]) HasPrev() bool {
	return s.CurrentPage > 1
}

// HasNext reports whether a next page exists.
func (s State[T]) HasNext() bool {
	return s.CurrentPage < s.TotalPages
}

// Controller holds the current page of a server-side collection. It never
// caches other pages: every page change is a full fetch.
type Controller[T any] struct {
	fetch    Fetcher[T]
	sort     domain.SortKey
	pageSize int
	logger   *slog.Logger

	// pub is held across each state change and its publication so
	// subscribers see snapshots in the order they were taken.
	pub sync.Mutex

	mu    sync.Mutex
	state State[T]
	gen   uint64

	subs observe.Subject[State[T]]
}

// New creates a controller on page 1 that requests pages of
// domain.DefaultPageSize items in the given order.
func New[T any](fetch Fetcher[T], sort domain.SortKey, logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		fetch:    fetch,
		sort:     sort,
		pageSize: domain.DefaultPageSize,
		logger:   logger,
		state:    State[T]{Items: []T{}, CurrentPage: 1},
	}
}

// State returns a snapshot of the controller.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot whenever the state changes.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	return c.subs.Subscribe(fn)
}

// Load fetches page and replaces the items with it. On failure the items are
// emptied and the error is recorded and returned. If another Load starts
// before this one finishes, this one's result is discarded.
func (c *Controller[T]) Load(ctx context.Context, page int) error {
	page = max(page, 1)

	c.pub.Lock()
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state.CurrentPage = page
	c.state.Loading = true
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.subs.Publish(snap)
	c.pub.Unlock()

	params := domain.PageParams{Page: page, Limit: c.pageSize, Sort: c.sort}
	result, err := c.fetch(ctx, params)

	c.pub.Lock()
	defer c.pub.Unlock()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale page", "page", page)
		return err
	}

	c.state.Loading = false
	if err != nil {
		c.state.Items = []T{}
		c.state.Err = err
	} else {
		size := result.PageSize
		if size <= 0 {
			size = c.pageSize
		}
		c.state.Items = result.Items
		if c.state.Items == nil {
			c.state.Items = []T{}
		}
		c.state.TotalCount = result.TotalCount
		c.state.TotalPages = domain.TotalPages(result.TotalCount, size)
		c.state.Err = nil
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.subs.Publish(snap)
	return err
}

// SetPage moves to page n and fetches it.
func (c *Controller[T]) SetPage(ctx context.Context, n int) error {
	return c.Load(ctx, n)
}

// Refresh refetches the current page.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.Load(ctx, c.State().CurrentPage)
}

// MutateThenRefresh runs op and, if it succeeds, reloads the current page so
// it reflects the server. If the current page no longer exists afterwards it
// moves to the new last page. A failed op is returned as is, without retry
// and without touching the items.
func (c *Controller[T]) MutateThenRefresh(ctx context.Context, op func(ctx context.Context) error) error {
	if err := op(ctx); err != nil {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	st := c.State()
	if last := max(st.TotalPages, 1); st.CurrentPage > last {
		return c.Load(ctx, last)
	}
	return nil
}

func (c *Controller[T]) snapshotLocked() State[T] {
	s := c.state
	s.Items = append([]T(nil), c.state.Items...)
	if s.Items == nil {
		s.Items = []T{}
	}
	return s
}
