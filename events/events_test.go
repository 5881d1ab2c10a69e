package events

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(ctx context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestNew(t *testing.T) {
	a := New(PostLiked, "p1", "bob")
	b := New(PostLiked, "p1", "bob")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("event ids = %q, %q; want unique", a.ID, b.ID)
	}
	id, err := uuid.FromString(a.ID)
	if err != nil || id == uuid.Nil || id.Version() != uuid.V4 {
		t.Errorf("event id %q is not a random uuid (err %v)", a.ID, err)
	}
	if a.Type != PostLiked || a.PostID != "p1" || a.Username != "bob" || a.At.IsZero() {
		t.Errorf("event = %+v", a)
	}
}

func TestFanoutDeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	ok, failing, last := &recorder{}, &recorder{err: boom}, &recorder{}
	f := Fanout{ok, failing, last}

	err := f.Publish(context.Background(), New(PostCreated, "p1", "alice"))
	if !errors.Is(err, boom) {
		t.Errorf("Publish err = %v, want boom", err)
	}
	for i, r := range []*recorder{ok, failing, last} {
		if len(r.got) != 1 {
			t.Errorf("publisher %d got %d events, want 1", i, len(r.got))
		}
	}
}

func TestEmitSwallowsErrors(t *testing.T) {
	r := &recorder{err: errors.New("down")}
	Emit(context.Background(), r, New(CommentAdded, "p1", "bob"))
	Emit(context.Background(), nil, New(CommentAdded, "p1", "bob"))
	if len(r.got) != 1 {
		t.Errorf("got %d events, want 1", len(r.got))
	}
}
