package handler_test

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

// waitFor reads the stream until a line contains want.
func waitFor(t *testing.T, sc *bufio.Scanner, want string) {
	t.Helper()
	for sc.Scan() {
		if strings.Contains(sc.Text(), want) {
			return
		}
	}
	t.Fatalf("stream ended before %q: %v", want, sc.Err())
}

func TestNotificationStream(t *testing.T) {
	app := newTestApp(t)
	app.notes.Success("Saved before connecting")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, app.srv.URL+"/notifications/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /notifications/stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %s", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	waitFor(t, sc, "#notification")
	waitFor(t, sc, "Saved before connecting")

	app.notes.Error("Failed to delete post", errString("forbidden"))
	waitFor(t, sc, "Failed to delete post: forbidden")
}

type errString string

func (e errString) Error() string { return string(e) }
