package apitest

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/msomdec/blog-desk/internal/domain"
)

const maxCommentLength = 1000

// SeedComments adds n comments by author to postID directly.
func (s *Server) SeedComments(postID, author uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 1; i <= n; i++ {
		s.insertCommentLocked(domain.NewComment{
			PostID:   postID,
			Content:  fmt.Sprintf("Comment %d", i),
			AuthorID: author,
		})
	}
}

func (s *Server) insertCommentLocked(nc domain.NewComment) *domain.Comment {
	now := s.now()
	c := &domain.Comment{
		ID:        uuid.New(),
		PostID:    nc.PostID,
		Content:   nc.Content,
		AuthorID:  nc.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.comments[nc.PostID] = append(s.comments[nc.PostID], c)
	return c
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	p, err := parsePagination(r, domain.SortCreatedAsc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	s.mu.Lock()
	_, post := s.findPostLocked(postID)
	all := make([]domain.Comment, len(s.comments[postID]))
	for i, c := range s.comments[postID] {
		all[i] = *c
	}
	s.mu.Unlock()

	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	slices.SortStableFunc(all, func(a, b domain.Comment) int {
		if domain.SortKey(p.Sort) == domain.SortCreatedDesc {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	writeJSON(w, http.StatusOK, listResponse[domain.Comment]{Data: paginate(all, p), Pagination: p})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var nc domain.NewComment
	if err := readJSON(r, &nc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	nc.PostID = postID
	if nc.Content == "" || nc.AuthorID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "Validation failed: content and authorId are required")
		return
	}
	if len(nc.Content) > maxCommentLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation failed: content exceeds %d characters", maxCommentLength))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, post := s.findPostLocked(postID); post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	c := *s.insertCommentLocked(nc)

	writeJSON(w, http.StatusCreated, c)
}
