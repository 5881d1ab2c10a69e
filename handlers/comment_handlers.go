package handlers

import (
	"net/http"

	"postboard/events"
	"postboard/metrics"
	"postboard/utils"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (a *App) CommentSubmit(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidateComment(req.Content); err != nil {
		writeError(w, err)
		return
	}

	postID := r.PathValue("postId")
	username := CurrentUser(r)
	if _, err := a.Store.AddComment(r.Context(), postID, username, utils.CleanText(req.Content)); err != nil {
		writeError(w, err)
		return
	}
	metrics.CommentsAdded.Inc()
	events.Emit(r.Context(), a.Events, events.New(events.CommentAdded, postID, username))

	writeJSON(w, map[string]string{"message": "Comment added"}, http.StatusOK)
}
