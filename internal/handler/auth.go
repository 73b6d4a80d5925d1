package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/blog-desk/internal/notify"
	"github.com/msomdec/blog-desk/internal/session"
	"github.com/msomdec/blog-desk/internal/view"
)

// AuthHandler handles login, registration and logout form posts.
type AuthHandler struct {
	session  *session.Store
	notes    *notify.Channel
	throttle *LoginThrottle
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sess *session.Store, notes *notify.Channel, throttle *LoginThrottle) *AuthHandler {
	return &AuthHandler{session: sess, notes: notes, throttle: throttle}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.session.IsAuthenticated() {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}
	renderPage(w, r, http.StatusOK, view.LoginPage(current(h.notes), ""))
}

// HandleLogin submits credentials through the session store.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.throttle.Allow(clientKey(r)) {
		h.notes.Warning("Too many login attempts. Please wait a moment.")
		renderPage(w, r, http.StatusTooManyRequests, view.LoginPage(current(h.notes), ""))
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.notes.Warning("Username and password are required.")
		renderPage(w, r, http.StatusUnprocessableEntity, view.LoginPage(current(h.notes), username))
		return
	}

	if err := h.session.Login(r.Context(), username, password); err != nil {
		h.notes.Error("Login failed", err)
		renderPage(w, r, statusFor(err), view.LoginPage(current(h.notes), username))
		return
	}

	h.notes.Success("Welcome back, " + username + "!")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// HandleRegisterPage renders the registration form.
// GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.session.IsAuthenticated() {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}
	renderPage(w, r, http.StatusOK, view.RegisterPage(current(h.notes), "", ""))
}

// HandleRegister creates an account and signs it in.
// POST /register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.throttle.Allow(clientKey(r)) {
		h.notes.Warning("Too many attempts. Please wait a moment.")
		renderPage(w, r, http.StatusTooManyRequests, view.RegisterPage(current(h.notes), "", ""))
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	var problem string
	switch {
	case username == "" || email == "" || password == "":
		problem = "Username, email and password are required."
	case password != confirm:
		problem = "Passwords do not match."
	}
	if problem != "" {
		h.notes.Warning(problem)
		renderPage(w, r, http.StatusUnprocessableEntity, view.RegisterPage(current(h.notes), username, email))
		return
	}

	if err := h.session.Register(r.Context(), username, email, password); err != nil {
		h.notes.Error("Registration failed", err)
		renderPage(w, r, statusFor(err), view.RegisterPage(current(h.notes), username, email))
		return
	}

	h.notes.Success("Account created. Welcome, " + username + "!")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// HandleLogout ends the session. The local session is always cleared; only a
// failure to forget the saved token is reported.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.notes.Error("Failed to forget saved login", err)
	} else {
		h.notes.Info("You have been logged out.")
	}
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}
