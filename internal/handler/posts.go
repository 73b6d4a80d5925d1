package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/blog-desk/internal/api"
	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/listing"
	"github.com/msomdec/blog-desk/internal/notify"
	"github.com/msomdec/blog-desk/internal/session"
	"github.com/msomdec/blog-desk/internal/view"
)

const maxCommentLength = 1000

// PostHandler serves the post index, post pages and their comments.
type PostHandler struct {
	api     *api.API
	session *session.Store
	notes   *notify.Channel
	logger  *slog.Logger
	posts   *listing.Controller[domain.Post]

	mu       sync.Mutex
	comments map[uuid.UUID]*listing.Controller[domain.Comment]
}

// NewPostHandler creates a new PostHandler with its own post list cursor.
func NewPostHandler(blog *api.API, sess *session.Store, notes *notify.Channel, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		api:      blog,
		session:  sess,
		notes:    notes,
		logger:   logger,
		posts:    listing.NewPostList(blog, logger),
		comments: make(map[uuid.UUID]*listing.Controller[domain.Comment]),
	}
}

// commentsFor returns the comment list of a post, creating it on first use.
func (h *PostHandler) commentsFor(postID uuid.UUID) *listing.Controller[domain.Comment] {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.comments[postID]
	if !ok {
		c = listing.NewCommentList(h.api, postID, h.logger)
		h.comments[postID] = c
	}
	return c
}

func (h *PostHandler) forgetComments(postID uuid.UUID) {
	h.mu.Lock()
	delete(h.comments, postID)
	h.mu.Unlock()
}

// HandleList renders the post index at the requested page.
// GET /posts?page=n
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.SetPage(r.Context(), pageFor(r, h.posts)); err != nil {
		h.notes.Error("Failed to load posts", err)
	}
	renderPage(w, r, http.StatusOK, view.PostListPage(h.session.User(), current(h.notes), h.posts.State()))
}

// HandleListFragment patches #post-list with the requested page.
// GET /posts/fragment?page=n
func (h *PostHandler) HandleListFragment(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.SetPage(r.Context(), pageFor(r, h.posts)); err != nil {
		h.notes.Error("Failed to load posts", err)
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.PostList(h.posts.State()),
		datastar.WithSelectorID("post-list"),
		datastar.WithModeInner(),
	)
}

// HandleNew renders the create form.
// GET /posts/new
func (h *PostHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.PostFormPage(h.session.User(), current(h.notes), view.PostForm{}))
}

// HandleCreate creates a post and opens it.
// POST /posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	form := view.PostForm{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: strings.TrimSpace(r.FormValue("content")),
	}
	if form.Title == "" || form.Content == "" {
		h.notes.Warning("Title and content are required.")
		renderPage(w, r, http.StatusUnprocessableEntity, view.PostFormPage(user, current(h.notes), form))
		return
	}

	var created *domain.Post
	err := h.posts.MutateThenRefresh(r.Context(), func(ctx context.Context) error {
		p, err := h.api.CreatePost(ctx, domain.NewPost{Title: form.Title, Content: form.Content, AuthorID: user.ID})
		created = p
		return err
	})
	if created == nil {
		h.notes.Error("Failed to create post", err)
		renderPage(w, r, statusFor(err), view.PostFormPage(user, current(h.notes), form))
		return
	}
	if err != nil {
		h.logger.Warn("refresh posts after create", "error", err)
	}

	h.notes.Success("Post created.")
	http.Redirect(w, r, "/posts/"+created.ID.String(), http.StatusSeeOther)
}

// HandleView renders one post and a page of its comments.
// GET /posts/{id}?page=n
func (h *PostHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	comments := h.commentsFor(post.ID)
	if err := comments.SetPage(r.Context(), pageFor(r, comments)); err != nil {
		h.notes.Error("Failed to load comments", err)
	}
	renderPage(w, r, http.StatusOK, view.PostPage(h.session.User(), current(h.notes), post, comments.State()))
}

// HandleCommentsFragment patches #comment-list with the requested page.
// GET /posts/{id}/comments/fragment?page=n
func (h *PostHandler) HandleCommentsFragment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	comments := h.commentsFor(id)
	if err := comments.SetPage(r.Context(), pageFor(r, comments)); err != nil {
		h.notes.Error("Failed to load comments", err)
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.CommentList(id.String(), comments.State()),
		datastar.WithSelectorID("comment-list"),
		datastar.WithModeInner(),
	)
}

// HandleCreateComment adds a comment and shows the page it landed on.
// POST /posts/{id}/comments
func (h *PostHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	back := "/posts/" + id.String()

	content := strings.TrimSpace(r.FormValue("content"))
	switch {
	case content == "":
		h.notes.Warning("Comment cannot be empty.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	case len(content) > maxCommentLength:
		h.notes.Warning("Comment must be at most " + strconv.Itoa(maxCommentLength) + " characters.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	comments := h.commentsFor(id)
	created := false
	err := comments.MutateThenRefresh(r.Context(), func(ctx context.Context) error {
		_, err := h.api.CreateComment(ctx, domain.NewComment{PostID: id, Content: content, AuthorID: user.ID})
		created = err == nil
		return err
	})
	if !created {
		h.notes.Error("Failed to add comment", err)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger.Warn("refresh comments after create", "post", id, "error", err)
	}

	// Comments are oldest first, so the new one is on the last page.
	h.notes.Success("Comment added.")
	last := max(comments.State().TotalPages, 1)
	http.Redirect(w, r, back+"?page="+strconv.Itoa(last), http.StatusSeeOther)
}

// HandleEdit renders the edit form for a post the user may modify.
// GET /posts/{id}/edit
func (h *PostHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadModifiable(w, r, "edit")
	if !ok {
		return
	}
	form := view.PostForm{ID: post.ID, Title: post.Title, Content: post.Content}
	renderPage(w, r, http.StatusOK, view.PostFormPage(h.session.User(), current(h.notes), form))
}

// HandleUpdate sends only the fields that changed.
// POST /posts/{id}/edit
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadModifiable(w, r, "edit")
	if !ok {
		return
	}
	back := "/posts/" + post.ID.String()

	form := view.PostForm{
		ID:      post.ID,
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: strings.TrimSpace(r.FormValue("content")),
	}
	if form.Title == "" || form.Content == "" {
		h.notes.Warning("Title and content are required.")
		renderPage(w, r, http.StatusUnprocessableEntity, view.PostFormPage(h.session.User(), current(h.notes), form))
		return
	}

	var patch domain.PostPatch
	if form.Title != post.Title {
		patch.Title = &form.Title
	}
	if form.Content != post.Content {
		patch.Content = &form.Content
	}
	if patch.Empty() {
		h.notes.Info("No changes to save.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	updated := false
	err := h.posts.MutateThenRefresh(r.Context(), func(ctx context.Context) error {
		_, err := h.api.UpdatePost(ctx, post.ID, patch)
		updated = err == nil
		return err
	})
	if !updated {
		h.notes.Error("Failed to update post", err)
		renderPage(w, r, statusFor(err), view.PostFormPage(h.session.User(), current(h.notes), form))
		return
	}
	if err != nil {
		h.logger.Warn("refresh posts after update", "post", post.ID, "error", err)
	}

	h.notes.Success("Post updated.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleDelete deletes a post and returns to the index, which moves back a
// page if the deleted post was the last one on it.
// POST /posts/{id}/delete
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadModifiable(w, r, "delete")
	if !ok {
		return
	}
	id := post.ID

	deleted := false
	err := h.posts.MutateThenRefresh(r.Context(), func(ctx context.Context) error {
		err := h.api.DeletePost(ctx, id)
		deleted = err == nil
		return err
	})
	if !deleted {
		h.notes.Error("Failed to delete post", err)
		http.Redirect(w, r, "/posts/"+id.String(), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger.Warn("refresh posts after delete", "post", id, "error", err)
	}

	h.forgetComments(id)
	h.notes.Success("Post deleted.")
	http.Redirect(w, r, "/posts?page="+strconv.Itoa(h.posts.State().CurrentPage), http.StatusSeeOther)
}

// loadPost fetches the post named in the path, rendering an error page and
// returning false when it cannot.
func (h *PostHandler) loadPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	user := h.session.User()
	id, ok := pathID(r)
	if !ok {
		renderPage(w, r, http.StatusNotFound, view.ErrorPage(user, http.StatusNotFound, "Post not found."))
		return nil, false
	}

	post, err := h.api.GetPost(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			renderPage(w, r, status, view.ErrorPage(user, status, "Post not found."))
			return nil, false
		}
		h.notes.Error("Failed to load post", err)
		renderPage(w, r, status, view.ErrorPage(user, status, err.Error()))
		return nil, false
	}
	return post, true
}

// loadModifiable is loadPost restricted to posts the signed-in user may
// change. verb names the refused action in the warning.
func (h *PostHandler) loadModifiable(w http.ResponseWriter, r *http.Request, verb string) (*domain.Post, bool) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return nil, false
	}
	post, ok := h.loadPost(w, r)
	if !ok {
		return nil, false
	}
	if !domain.CanModify(user, post.AuthorID) {
		h.notes.Warning("You can only " + verb + " your own posts.")
		http.Redirect(w, r, "/posts/"+post.ID.String(), http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

// sessionUser returns the signed-in user. A logout can land after
// RequireSession let the request through, in which case the visitor is sent
// to the login page.
func (h *PostHandler) sessionUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := h.session.User()
	if user == nil {
		h.notes.Info("Please log in to continue.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}
