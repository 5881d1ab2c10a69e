package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"postboard/auth"
)

type ctxKey string

const usernameKey ctxKey = "username"

// resolveIdentity turns a raw Authorization header value into a username.
// Every failure is reported as auth.ErrInvalidToken.
func resolveIdentity(tokens *auth.Tokens, header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: missing bearer token", auth.ErrInvalidToken)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing bearer token", auth.ErrInvalidToken)
	}
	return tokens.Verify(token)
}

func (a *App) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := resolveIdentity(a.Tokens, r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the identity attached by RequireLogin.
func CurrentUser(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}
