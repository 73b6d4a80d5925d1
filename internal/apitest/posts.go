package apitest

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
)

const maxLimit = 100

type pagination struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Page   int    `json:"page"`
	Sort   string `json:"sort"`
	Total  int    `json:"total"`
}

type listResponse[T any] struct {
	Data       []T         `json:"data"`
	Pagination *pagination `json:"pagination"`
}

// parsePagination mirrors the production server: page defaults to 1, limit
// to 10 (max 100), sort to the given default and must be a known key.
func parsePagination(r *http.Request, defaultSort domain.SortKey) (*pagination, error) {
	q := r.URL.Query()
	p := &pagination{Page: 1, Limit: domain.DefaultPageSize, Sort: string(defaultSort)}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid page: %s", v)
		}
		p.Page = max(n, 1)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %s", v)
		}
		if n > maxLimit {
			return nil, fmt.Errorf("limit must be less than or equal to %d", maxLimit)
		}
		if n > 0 {
			p.Limit = n
		}
	}
	if v := q.Get("sort"); v != "" {
		if !domain.SortKey(v).Valid() {
			return nil, fmt.Errorf("invalid sort parameter: %s", v)
		}
		p.Sort = v
	}
	p.Offset = (p.Page - 1) * p.Limit
	return p, nil
}

func paginate[T any](items []T, p *pagination) []T {
	p.Total = len(items)
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}

func sortPosts(posts []domain.Post, key string) {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		switch domain.SortKey(key) {
		case domain.SortCreatedAsc:
			return a.CreatedAt.Compare(b.CreatedAt)
		case domain.SortTitleAsc:
			return strings.Compare(a.Title, b.Title)
		case domain.SortTitleDesc:
			return strings.Compare(b.Title, a.Title)
		default:
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	})
}

// SeedPosts creates n posts by author directly, titled "Post 1".."Post n".
func (s *Server) SeedPosts(author uuid.UUID, n int) []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Post, 0, n)
	for i := 1; i <= n; i++ {
		p := s.insertPostLocked(domain.NewPost{
			Title:    fmt.Sprintf("Post %d", i),
			Content:  fmt.Sprintf("Content of post %d", i),
			AuthorID: author,
		})
		out = append(out, *p)
	}
	return out
}

// PostCount returns the number of stored posts.
func (s *Server) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *Server) insertPostLocked(np domain.NewPost) *domain.Post {
	now := s.now()
	p := &domain.Post{
		ID:        uuid.New(),
		Title:     np.Title,
		Content:   np.Content,
		AuthorID:  np.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.posts = append(s.posts, p)
	return p
}

func (s *Server) findPostLocked(id uuid.UUID) (int, *domain.Post) {
	for i, p := range s.posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r, domain.SortCreatedDesc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	s.mu.Lock()
	all := make([]domain.Post, len(s.posts))
	for i, post := range s.posts {
		all[i] = *post
	}
	s.mu.Unlock()

	sortPosts(all, p.Sort)
	writeJSON(w, http.StatusOK, listResponse[domain.Post]{Data: paginate(all, p), Pagination: p})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var np domain.NewPost
	if err := readJSON(r, &np); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if np.Title == "" || np.Content == "" || np.AuthorID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "Validation failed: title, content and authorId are required")
		return
	}

	s.mu.Lock()
	post := *s.insertPostLocked(np)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	s.mu.Lock()
	_, post := s.findPostLocked(id)
	var out domain.Post
	if post != nil {
		out = *post
	}
	s.mu.Unlock()

	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	user, _, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var patch domain.PostPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, post := s.findPostLocked(id)
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if !domain.CanModify(user, post.AuthorID) {
		writeError(w, http.StatusForbidden, "You are not allowed to modify this post")
		return
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	post.UpdatedAt = s.now()

	writeJSON(w, http.StatusOK, *post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	user, _, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, post := s.findPostLocked(id)
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if !domain.CanModify(user, post.AuthorID) {
		writeError(w, http.StatusForbidden, "You are not allowed to delete this post")
		return
	}
	s.posts = slices.Delete(s.posts, i, i+1)
	delete(s.comments, id)

	w.WriteHeader(http.StatusNoContent)
}
