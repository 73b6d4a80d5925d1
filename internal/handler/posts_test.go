package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/handler"
)

func TestPostListPagination(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	app.blog.SeedPosts(author.ID, 23)

	resp, body := app.get(t, "/posts?page=3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// Newest first: page 3 holds the three oldest posts.
	for _, title := range []string{">Post 3</a>", ">Post 2</a>", ">Post 1</a>"} {
		if !strings.Contains(body, title) {
			t.Errorf("expected %s on page 3", title)
		}
	}
	if strings.Contains(body, ">Post 4</a>") {
		t.Error("Post 4 belongs to page 2")
	}
	if !strings.Contains(body, "Page 3 of 3 (23 total)") {
		t.Error("expected pager summary")
	}

	// A bare URL keeps the cursor.
	_, body = app.get(t, "/posts")
	if !strings.Contains(body, "Page 3 of 3") {
		t.Error("expected the cursor to stay on page 3")
	}
}

func TestPostListFragmentIsSSE(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	app.blog.SeedPosts(author.ID, 12)

	resp, body := app.get(t, "/posts/fragment?page=2")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %s", ct)
	}
	for _, want := range []string{"datastar-patch-elements", "#post-list", ">Post 1</a>", ">Post 2</a>"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in stream: %s", want, body)
		}
	}
}

func TestPostListLoadFailureNotifies(t *testing.T) {
	app := newTestApp(t)
	app.blog.Fail(http.MethodGet, "/api/v1/posts", http.StatusInternalServerError, "database unavailable")

	_, body := app.get(t, "/posts")
	if !strings.Contains(body, "Could not load posts.") {
		t.Fatal("expected the failure to be visible in the list")
	}
	if n := app.notification(t); n.Text != "Failed to load posts: database unavailable" {
		t.Fatalf("unexpected notification %q", n.Text)
	}
}

func TestCreateViewEditPost(t *testing.T) {
	app := newTestApp(t)
	app.mustCreateUser(t, "writer")
	app.login(t, "writer")

	resp, _ := app.post(t, "/posts", url.Values{"title": {"Hello"}, "content": {"First post"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/posts/") {
		t.Fatalf("expected redirect to the new post, got %s", loc)
	}
	if app.blog.PostCount() != 1 {
		t.Fatalf("expected 1 post on the server, got %d", app.blog.PostCount())
	}

	_, body := app.get(t, loc)
	if !strings.Contains(body, "Hello") || !strings.Contains(body, "First post") {
		t.Fatal("expected post content on its page")
	}
	if !strings.Contains(body, loc+"/edit") {
		t.Fatal("author should see the edit link")
	}

	// Only the changed field is sent; unchanged submissions send nothing.
	resp, _ = app.post(t, loc+"/edit", url.Values{"title": {"Hello"}, "content": {"First post"}})
	expectRedirect(t, resp, loc)
	if calls := app.blog.Calls(http.MethodPut, "/api/v1"+loc); calls != 0 {
		t.Fatalf("expected no update call for an unchanged form, got %d", calls)
	}

	resp, _ = app.post(t, loc+"/edit", url.Values{"title": {"Hello again"}, "content": {"First post"}})
	expectRedirect(t, resp, loc)
	_, body = app.get(t, loc)
	if !strings.Contains(body, "Hello again") {
		t.Fatal("expected the updated title")
	}
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(t)
	app.mustCreateUser(t, "writer")
	app.login(t, "writer")

	resp, body := app.post(t, "/posts", url.Values{"title": {"Only a title"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `value="Only a title"`) {
		t.Fatal("expected the draft to be kept")
	}
	if app.blog.PostCount() != 0 {
		t.Fatal("invalid form must not reach the server")
	}
}

func TestViewUnknownPost(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.get(t, "/posts/00000000-0000-0000-0000-000000000001")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp, _ = app.get(t, "/posts/not-a-uuid")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a malformed id, got %d", resp.StatusCode)
	}
}

func TestEditForbiddenForOtherUsers(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	app.mustCreateUser(t, "other")
	post := app.blog.SeedPosts(author.ID, 1)[0]
	app.login(t, "other")

	resp, _ := app.get(t, "/posts/"+post.ID.String()+"/edit")
	expectRedirect(t, resp, "/posts/"+post.ID.String())
	if n := app.notification(t); n.Severity != domain.SeverityWarning {
		t.Fatalf("expected warning, got %+v", n)
	}
}

func TestDeleteForbiddenKeepsPost(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	app.mustCreateUser(t, "other")
	post := app.blog.SeedPosts(author.ID, 1)[0]
	app.login(t, "other")

	resp, _ := app.post(t, "/posts/"+post.ID.String()+"/delete", nil)
	expectRedirect(t, resp, "/posts/"+post.ID.String())
	if app.blog.PostCount() != 1 {
		t.Fatal("post must survive a forbidden delete")
	}
	if n := app.blog.Calls(http.MethodDelete, "/api/v1/posts/"+post.ID.String()); n != 0 {
		t.Fatalf("expected no DELETE request for another user's post, got %d", n)
	}
	n := app.notification(t)
	if n.Severity != domain.SeverityWarning || n.Text != "You can only delete your own posts." {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestDeleteRejectedByServerKeepsPost(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	post := app.blog.SeedPosts(author.ID, 1)[0]
	app.login(t, "author")

	path := "/api/v1/posts/" + post.ID.String()
	app.blog.Fail(http.MethodDelete, path, http.StatusForbidden, "You are not allowed to delete this post")

	resp, _ := app.post(t, "/posts/"+post.ID.String()+"/delete", nil)
	expectRedirect(t, resp, "/posts/"+post.ID.String())
	if app.blog.PostCount() != 1 {
		t.Fatal("post must survive a rejected delete")
	}
	if n := app.notification(t); n.Text != "Failed to delete post: You are not allowed to delete this post" {
		t.Fatalf("unexpected notification %q", n.Text)
	}
}

func TestCreateAfterSessionEndedRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	h := handler.NewPostHandler(app.api, app.session, app.notes, slog.New(slog.DiscardHandler))

	form := url.Values{"title": {"Late"}, "content": {"Posted after logout"}}
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if app.blog.PostCount() != 0 {
		t.Fatal("no post should be created without a user")
	}
}

func TestCommentAfterSessionEndedRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	post := app.blog.SeedPosts(author.ID, 1)[0]
	h := handler.NewPostHandler(app.api, app.session, app.notes, slog.New(slog.DiscardHandler))

	form := url.Values{"content": {"too late"}}
	req := httptest.NewRequest(http.MethodPost, "/posts/"+post.ID.String()+"/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", post.ID.String())
	rec := httptest.NewRecorder()
	h.HandleCreateComment(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if n := app.blog.Calls(http.MethodPost, "/api/v1/posts/"+post.ID.String()+"/comments"); n != 0 {
		t.Fatalf("expected no comment request, got %d", n)
	}
}

func TestDeleteLastPostOnLastPageMovesBack(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	posts := app.blog.SeedPosts(author.ID, 11)
	app.login(t, "author")

	app.get(t, "/posts?page=2")
	// Oldest post is alone on page 2.
	resp, _ := app.post(t, "/posts/"+posts[0].ID.String()+"/delete", nil)
	expectRedirect(t, resp, "/posts?page=1")
	if app.blog.PostCount() != 10 {
		t.Fatalf("expected 10 posts, got %d", app.blog.PostCount())
	}
	if n := app.notification(t); n.Text != "Post deleted." {
		t.Fatalf("unexpected notification %q", n.Text)
	}
}

func TestAdminMayDeleteAnyPost(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	admin := app.mustCreateUser(t, "admin")
	app.blog.SetRole(admin.ID, domain.RoleAdmin)
	post := app.blog.SeedPosts(author.ID, 1)[0]
	app.login(t, "admin")

	resp, _ := app.post(t, "/posts/"+post.ID.String()+"/delete", nil)
	expectRedirect(t, resp, "/posts?page=1")
	if app.blog.PostCount() != 0 {
		t.Fatal("admin delete should remove the post")
	}
}

func TestCommentsPaginateAndCreate(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	post := app.blog.SeedPosts(author.ID, 1)[0]
	app.blog.SeedComments(post.ID, author.ID, 10)
	app.login(t, "author")
	base := "/posts/" + post.ID.String()

	_, body := app.get(t, base)
	if !strings.Contains(body, "<p>Comment 1</p>") || strings.Contains(body, "pager") {
		t.Fatal("expected a single page of comments, oldest first")
	}

	resp, _ := app.post(t, base+"/comments", url.Values{"content": {"Eleventh"}})
	// The eleventh comment starts page 2.
	expectRedirect(t, resp, base+"?page=2")

	_, body = app.get(t, base+"?page=2")
	if !strings.Contains(body, "<p>Eleventh</p>") {
		t.Fatal("expected the new comment on page 2")
	}

	resp, body = app.get(t, base+"/comments/fragment?page=1")
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatal("expected an event stream")
	}
	if !strings.Contains(body, "#comment-list") || !strings.Contains(body, "<p>Comment 1</p>") {
		t.Fatalf("unexpected comment fragment: %s", body)
	}
}

func TestCommentValidation(t *testing.T) {
	app := newTestApp(t)
	author := app.mustCreateUser(t, "author")
	post := app.blog.SeedPosts(author.ID, 1)[0]
	app.login(t, "author")
	base := "/posts/" + post.ID.String()

	resp, _ := app.post(t, base+"/comments", url.Values{"content": {"   "}})
	expectRedirect(t, resp, base)
	resp, _ = app.post(t, base+"/comments", url.Values{"content": {strings.Repeat("x", 1001)}})
	expectRedirect(t, resp, base)

	if calls := app.blog.Calls(http.MethodPost, "/api/v1"+base+"/comments"); calls != 0 {
		t.Fatalf("expected no server calls, got %d", calls)
	}
}
