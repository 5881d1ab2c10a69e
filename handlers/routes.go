package handlers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postboard/auth"
	"postboard/database"
	"postboard/events"
)

type ImageUploader interface {
	Upload(ctx context.Context, ext, contentType string, data []byte) (string, error)
}

// App carries the dependencies shared by every handler.
type App struct {
	Store  database.Store
	Creds  *auth.Credentials
	Tokens *auth.Tokens
	Events events.Publisher
	Images ImageUploader // nil disables POST /images
	Hub    *Hub
}

func (a *App) Routes(corsOrigin string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", a.SignupHandler)
	mux.HandleFunc("POST /login", a.LoginHandler)
	mux.HandleFunc("GET /posts", a.ShowPosts)
	mux.HandleFunc("GET /posts/{postId}", a.ShowPost)

	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, a.RequireLogin(h))
	}
	protect("POST /posts", a.PostSubmit)
	protect("POST /posts/{postId}/comments", a.CommentSubmit)
	protect("PATCH /posts/{postId}/like", a.LikePost)
	protect("POST /images", a.ImageUpload)
	protect("GET /me", a.MeHandler)

	if a.Hub != nil {
		mux.HandleFunc("GET /ws", a.Hub.HandleConnections)
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return CORS(corsOrigin, mux)
}
