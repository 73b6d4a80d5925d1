package handler

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/notify"
	"github.com/msomdec/blog-desk/internal/view"
)

// NotificationHandler streams the notification region to open pages.
type NotificationHandler struct {
	notes *notify.Channel
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notes *notify.Channel) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

// HandleStream patches #notification with the current notification, then
// again on every change until the client disconnects.
// GET /notifications/stream
func (h *NotificationHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	// Only the latest notification matters, so a slow client skips
	// intermediate ones.
	updates := make(chan *domain.Notification, 1)
	cancel := h.notes.Subscribe(func(n *domain.Notification) {
		for {
			select {
			case updates <- n:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer cancel()

	sse := datastar.NewSSE(w, r)
	patch := func(n *domain.Notification) error {
		return sse.PatchElementTempl(
			view.Notification(n),
			datastar.WithSelectorID("notification"),
			datastar.WithModeInner(),
		)
	}

	if err := patch(current(h.notes)); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-updates:
			if err := patch(n); err != nil {
				return
			}
		}
	}
}
