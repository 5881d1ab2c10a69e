package handlers

import (
	"errors"
	"net/http"

	"postboard/auth"
	"postboard/metrics"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *App) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidateCredentials(req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}

	if _, err := a.Creds.Create(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	metrics.Signups.Inc()

	a.respondWithToken(w, req.Username)
}

func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	// malformed credentials can never match a stored account
	if ValidateCredentials(req.Username, req.Password) != nil {
		metrics.Logins.WithLabelValues(metrics.ResultFailed).Inc()
		writeError(w, auth.ErrInvalidCredentials)
		return
	}

	_, err := a.Creds.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues(metrics.ResultFailed).Inc()
		}
		writeError(w, err)
		return
	}
	metrics.Logins.WithLabelValues(metrics.ResultOK).Inc()

	a.respondWithToken(w, req.Username)
}

func (a *App) respondWithToken(w http.ResponseWriter, username string) {
	token, err := a.Tokens.Issue(username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, tokenResponse{Token: token}, http.StatusOK)
}

func (a *App) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"username": CurrentUser(r)}, http.StatusOK)
}
