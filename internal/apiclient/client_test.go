package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/msomdec/blog-desk/internal/apiclient"
	"github.com/msomdec/blog-desk/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := apiclient.New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSend_BearerTokenLifecycle(t *testing.T) {
	var gotAuth []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	if err := c.Send(ctx, http.MethodGet, "/auth/me", nil, nil, nil); err != nil {
		t.Fatalf("Send without token: %v", err)
	}
	c.SetAuthToken("abc123")
	if err := c.Send(ctx, http.MethodGet, "/auth/me", nil, nil, nil); err != nil {
		t.Fatalf("Send with token: %v", err)
	}
	if err := c.Send(ctx, http.MethodGet, "/auth/me", nil, nil, nil); err != nil {
		t.Fatalf("Send with token again: %v", err)
	}
	c.SetAuthToken("")
	if err := c.Send(ctx, http.MethodGet, "/auth/me", nil, nil, nil); err != nil {
		t.Fatalf("Send after clear: %v", err)
	}

	want := []string{"", "Bearer abc123", "Bearer abc123", ""}
	for i := range want {
		if gotAuth[i] != want[i] {
			t.Fatalf("request %d: expected Authorization %q, got %q", i, want[i], gotAuth[i])
		}
	}
}

func TestSend_EncodesBodyAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/posts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("expected page=2, got %q", r.URL.Query().Get("page"))
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"echo": in["title"]})
	})

	var out struct {
		Echo string `json:"echo"`
	}
	err := c.Send(context.Background(), http.MethodPost, "api/v1/posts", url.Values{"page": {"2"}}, map[string]string{"title": "hello"}, &out)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.Echo != "hello" {
		t.Fatalf("expected echo hello, got %q", out.Echo)
	}
}

func TestSend_StructuredErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid username or password"})
	})

	err := c.Send(context.Background(), http.MethodPost, "/auth/login", nil, map[string]string{}, nil)
	e, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if e.Kind != domain.KindAPI {
		t.Fatalf("expected KindAPI, got %s", e.Kind)
	}
	if e.Message != "Invalid username or password" {
		t.Fatalf("unexpected message %q", e.Message)
	}
	if !e.Unauthorized() {
		t.Fatal("expected Unauthorized")
	}
}

func TestSend_UnstructuredErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.Send(context.Background(), http.MethodGet, "/api/v1/posts", nil, nil, nil)
	e, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if e.Kind != domain.KindAPI || e.Status != http.StatusBadGateway {
		t.Fatalf("expected api error with 502, got %s/%d", e.Kind, e.Status)
	}
	if e.Message != "request failed with status code 502" {
		t.Fatalf("unexpected message %q", e.Message)
	}
}

func TestSend_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	var out map[string]any
	err := c.Send(context.Background(), http.MethodGet, "/auth/me", nil, nil, &out)
	e, ok := domain.AsError(err)
	if !ok || e.Kind != domain.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := apiclient.New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Send(context.Background(), http.MethodPost, "/auth/logout", nil, nil, nil)
	e, ok := domain.AsError(err)
	if !ok || e.Kind != domain.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if e.Message == "" {
		t.Fatal("expected a human-readable message")
	}
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, apiclient.WithTimeout(50*time.Millisecond))
	defer close(release)

	err := c.Send(context.Background(), http.MethodGet, "/auth/me", nil, nil, nil)
	e, ok := domain.AsError(err)
	if !ok || e.Kind != domain.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if e.Message != "request timed out" {
		t.Fatalf("expected timeout message, got %q", e.Message)
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "not a url", "http://"} {
		if _, err := apiclient.New(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}
