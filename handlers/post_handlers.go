package handlers

import (
	"errors"
	"net/http"

	"postboard/database"
	"postboard/events"
	"postboard/metrics"
	"postboard/utils"
)

type postRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

func (a *App) ShowPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.Store.ListPosts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, posts, http.StatusOK)
}

func (a *App) ShowPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.Store.GetPost(r.Context(), r.PathValue("postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, post, http.StatusOK)
}

func (a *App) PostSubmit(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidatePost(req.Content, req.Image); err != nil {
		writeError(w, err)
		return
	}

	username := CurrentUser(r)
	post, err := a.Store.CreatePost(r.Context(), username, utils.CleanText(req.Content), req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.PostsCreated.Inc()
	events.Emit(r.Context(), a.Events, events.New(events.PostCreated, post.ID, username))

	writeJSON(w, post, http.StatusOK)
}

func (a *App) LikePost(w http.ResponseWriter, r *http.Request) {
	username := CurrentUser(r)
	post, err := a.Store.LikePost(r.Context(), r.PathValue("postId"), username)
	switch {
	case errors.Is(err, database.ErrAlreadyLiked):
		metrics.Likes.WithLabelValues(metrics.ResultAlreadyLiked).Inc()
	case errors.Is(err, database.ErrPostNotFound):
		metrics.Likes.WithLabelValues(metrics.ResultNotFound).Inc()
	case err == nil:
		metrics.Likes.WithLabelValues(metrics.ResultOK).Inc()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	events.Emit(r.Context(), a.Events, events.New(events.PostLiked, post.ID, username))

	writeJSON(w, post, http.StatusOK)
}
