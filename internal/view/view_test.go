package view_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/listing"
	"github.com/msomdec/blog-desk/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestPostListEscapesTitles(t *testing.T) {
	st := listing.State[domain.Post]{
		Items:       []domain.Post{{ID: uuid.New(), Title: `<script>alert("x")</script>`, CreatedAt: time.Now()}},
		CurrentPage: 1,
		TotalPages:  1,
		TotalCount:  1,
	}
	out := render(t, view.PostList(st))
	if strings.Contains(out, "<script>") {
		t.Fatalf("title was not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped title, got %s", out)
	}
}

func TestPostListPager(t *testing.T) {
	st := listing.State[domain.Post]{Items: []domain.Post{{ID: uuid.New(), Title: "a"}}, CurrentPage: 2, TotalPages: 3, TotalCount: 23}
	out := render(t, view.PostList(st))
	for _, want := range []string{"/posts?page=1", "/posts?page=3", "/posts/fragment?page=3", "Page 2 of 3 (23 total)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}

	first := listing.State[domain.Post]{Items: []domain.Post{{ID: uuid.New()}}, CurrentPage: 1, TotalPages: 1, TotalCount: 1}
	if out := render(t, view.PostList(first)); strings.Contains(out, "pager") {
		t.Fatalf("single page should not render a pager: %s", out)
	}
}

func TestPostListEmptyAndError(t *testing.T) {
	if out := render(t, view.PostList(listing.State[domain.Post]{CurrentPage: 1})); !strings.Contains(out, "No posts yet.") {
		t.Fatalf("expected empty message, got %s", out)
	}
	failed := listing.State[domain.Post]{CurrentPage: 1, Err: errors.New("boom")}
	if out := render(t, view.PostList(failed)); !strings.Contains(out, "Could not load posts.") {
		t.Fatalf("expected error message, got %s", out)
	}
}

func TestPostPageActionsFollowPermissions(t *testing.T) {
	author := &domain.User{ID: uuid.New(), Username: "alice", Role: domain.RoleUser}
	other := &domain.User{ID: uuid.New(), Username: "bob", Role: domain.RoleUser}
	admin := &domain.User{ID: uuid.New(), Username: "root", Role: domain.RoleAdmin}
	post := &domain.Post{ID: uuid.New(), Title: "Hello", Content: "Body", AuthorID: author.ID}
	comments := listing.State[domain.Comment]{CurrentPage: 1}

	tests := []struct {
		name string
		user *domain.User
		want bool
	}{
		{"author", author, true},
		{"admin", admin, true},
		{"other user", other, false},
		{"anonymous", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, view.PostPage(tc.user, nil, post, comments))
			got := strings.Contains(out, "/edit")
			if got != tc.want {
				t.Fatalf("edit link shown = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCommentListPagerTargetsPost(t *testing.T) {
	postID := uuid.New().String()
	st := listing.State[domain.Comment]{
		Items:       []domain.Comment{{ID: uuid.New(), Content: "hi"}},
		CurrentPage: 1,
		TotalPages:  2,
		TotalCount:  12,
	}
	out := render(t, view.CommentList(postID, st))
	if !strings.Contains(out, "/posts/"+postID+"/comments/fragment?page=2") {
		t.Fatalf("expected comment fragment link, got %s", out)
	}
}

func TestLayoutShowsNotificationAndUser(t *testing.T) {
	user := &domain.User{Username: "alice"}
	n := &domain.Notification{Text: "Post created", Severity: domain.SeveritySuccess}
	out := render(t, view.Layout("Home", user, n, view.Notification(nil)))

	for _, want := range []string{view.DatastarScript, `id="notification"`, "Post created", "notification success", "alice", "/logout"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in layout", want)
		}
	}
}

func TestLoginPageKeepsUsername(t *testing.T) {
	out := render(t, view.LoginPage(nil, `al"ice`))
	if !strings.Contains(out, `value="al&#34;ice"`) {
		t.Fatalf("expected escaped username value, got %s", out)
	}
}

func TestPostFormPageModes(t *testing.T) {
	user := &domain.User{Username: "alice"}
	create := render(t, view.PostFormPage(user, nil, view.PostForm{Title: "Draft"}))
	if !strings.Contains(create, `action="/posts"`) || !strings.Contains(create, "New post") {
		t.Fatalf("expected create form, got %s", create)
	}
	if !strings.Contains(create, `value="Draft"`) {
		t.Fatalf("expected draft title kept, got %s", create)
	}

	id := uuid.New()
	edit := render(t, view.PostFormPage(user, nil, view.PostForm{ID: id, Title: "T", Content: "C"}))
	if !strings.Contains(edit, `action="/posts/`+id.String()+`/edit"`) || !strings.Contains(edit, "Edit post") {
		t.Fatalf("expected edit form, got %s", edit)
	}
}

func TestNotificationEscapesText(t *testing.T) {
	out := render(t, view.Notification(&domain.Notification{Text: `<img src=x onerror="alert(1)">`, Severity: domain.SeverityError}))
	if strings.Contains(out, "<img") {
		t.Fatalf("notification text was not escaped: %s", out)
	}
	if !strings.Contains(out, `class="notification error"`) {
		t.Fatalf("expected severity class, got %s", out)
	}
	if out := render(t, view.Notification(nil)); out != "" {
		t.Fatalf("expected nothing for a nil notification, got %q", out)
	}
}

func TestCommentListEscapesContent(t *testing.T) {
	st := listing.State[domain.Comment]{
		Items:       []domain.Comment{{ID: uuid.New(), Content: `</p><script>steal()</script>`}},
		CurrentPage: 1,
		TotalPages:  1,
		TotalCount:  1,
	}
	out := render(t, view.CommentList(uuid.New().String(), st))
	if strings.Contains(out, "<script>") {
		t.Fatalf("comment was not escaped: %s", out)
	}
}

func TestErrorPageEscapesMessage(t *testing.T) {
	out := render(t, view.ErrorPage(nil, 404, `<b>gone</b>`))
	if !strings.Contains(out, "<h1>404</h1>") || !strings.Contains(out, "&lt;b&gt;gone&lt;/b&gt;") {
		t.Fatalf("unexpected error page %s", out)
	}
	if !strings.Contains(out, `href="/login"`) {
		t.Fatalf("expected anonymous nav, got %s", out)
	}
}
