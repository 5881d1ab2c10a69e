// Package events publishes post activity after it has been persisted.
package events

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	PostCreated  = "post_created"
	CommentAdded = "comment_added"
	PostLiked    = "post_liked"
)

type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	PostID   string    `json:"post_id"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

func New(typ, postID, username string) Event {
	return Event{ID: uuid.Must(uuid.NewV4()).String(), Type: typ, PostID: postID, Username: username, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout delivers every event to all of its publishers and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes ev and only logs failures; the mutation it describes has
// already been committed.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("Error publishing %s event for post %s: %v", ev.Type, ev.PostID, err)
	}
}
