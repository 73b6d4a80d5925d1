package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/listing"
	"github.com/msomdec/blog-desk/internal/notify"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}

// current returns the visible notification for seeding a full page render.
func current(notes *notify.Channel) *domain.Notification {
	n, ok := notes.Current()
	if !ok {
		return nil
	}
	return &n
}

// statusFor maps a client adapter failure onto the status of the page that
// reports it. Transport failures become 502.
func statusFor(err error) int {
	e, ok := domain.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if e.Kind == domain.KindTransport {
		return http.StatusBadGateway
	}
	if e.Status >= 400 && e.Status < 600 {
		return e.Status
	}
	return http.StatusBadGateway
}

// pageFor reads ?page=n, falling back to the list's current page so a bare
// URL keeps the cursor where it was.
func pageFor[T any](r *http.Request, list *listing.Controller[T]) int {
	v := r.URL.Query().Get("page")
	if v == "" {
		return list.State().CurrentPage
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}
