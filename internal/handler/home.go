package handler

import (
	"net/http"
)

// HandleHome sends visitors to the post index.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}
