package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/blog-desk/internal/api"
	"github.com/msomdec/blog-desk/internal/notify"
	"github.com/msomdec/blog-desk/internal/session"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, sess *session.Store, blog *api.API, notes *notify.Channel, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(sess, notes, NewLoginThrottle(loginRate, loginBurst))
	postHandler := NewPostHandler(blog, sess, notes, logger)
	notificationHandler := NewNotificationHandler(notes)

	requireSession := func(h http.HandlerFunc) http.Handler {
		return RequireSession(sess, notes, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /{$}", HandleHome)

	mux.HandleFunc("GET /login", authHandler.HandleLoginPage)
	mux.HandleFunc("POST /login", authHandler.HandleLogin)
	mux.HandleFunc("GET /register", authHandler.HandleRegisterPage)
	mux.HandleFunc("POST /register", authHandler.HandleRegister)
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	mux.HandleFunc("GET /posts", postHandler.HandleList)
	mux.HandleFunc("GET /posts/fragment", postHandler.HandleListFragment)
	mux.Handle("GET /posts/new", requireSession(postHandler.HandleNew))
	mux.Handle("POST /posts", requireSession(postHandler.HandleCreate))
	mux.HandleFunc("GET /posts/{id}", postHandler.HandleView)
	mux.HandleFunc("GET /posts/{id}/comments/fragment", postHandler.HandleCommentsFragment)
	mux.Handle("POST /posts/{id}/comments", requireSession(postHandler.HandleCreateComment))
	mux.Handle("GET /posts/{id}/edit", requireSession(postHandler.HandleEdit))
	mux.Handle("POST /posts/{id}/edit", requireSession(postHandler.HandleUpdate))
	mux.Handle("POST /posts/{id}/delete", requireSession(postHandler.HandleDelete))

	mux.HandleFunc("GET /notifications/stream", notificationHandler.HandleStream)
}
