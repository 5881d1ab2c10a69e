package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK           = "ok"
	ResultFailed       = "failed"
	ResultAlreadyLiked = "already_liked"
	ResultNotFound     = "not_found"
)

var (
	Signups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_signups_total",
		Help: "Accounts created.",
	})
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_posts_created_total",
		Help: "Posts created.",
	})
	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_comments_added_total",
		Help: "Comments appended to posts.",
	})
	Likes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_likes_total",
		Help: "Like attempts by result.",
	}, []string{"result"})
)
