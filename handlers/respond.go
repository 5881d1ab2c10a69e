package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"postboard/auth"
	"postboard/database"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// validationError is a client input problem reported as 400.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, map[string]string{"detail": msg}, status)
}

// writeError maps the error taxonomy onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve validationError
	switch {
	case errors.As(err, &ve):
		writeDetail(w, ve.msg, http.StatusBadRequest)
	case errors.Is(err, errBodyTooLarge):
		writeDetail(w, "Request body too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, database.ErrUsernameTaken):
		writeDetail(w, "Username already exists.", http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeDetail(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidToken):
		writeDetail(w, "Invalid or expired token", http.StatusUnauthorized)
	case errors.Is(err, database.ErrPostNotFound):
		writeDetail(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, database.ErrAlreadyLiked):
		writeDetail(w, "Already liked", http.StatusBadRequest)
	default:
		log.Printf("Internal error: %v", err)
		writeDetail(w, "Internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return errBodyTooLarge
		}
		return validationError{"Invalid JSON body"}
	}
	return nil
}
