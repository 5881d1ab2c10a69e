package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"postboard/events"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleConnections))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer c.Close()
		conns[i] = c
	}
	waitFor(t, func() bool { return hub.Len() == 2 })

	sent := events.New(events.PostLiked, "p1", "bob")
	if err := hub.Publish(context.Background(), sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, c := range conns {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got events.Event
		if err := c.ReadJSON(&got); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if got.ID != sent.ID || got.Type != events.PostLiked || got.PostID != "p1" {
			t.Errorf("event = %+v, want %+v", got, sent)
		}
	}

	conns[0].Close()
	waitFor(t, func() bool { return hub.Len() == 1 })

	hub.Close()
	if hub.Len() != 0 {
		t.Errorf("clients after Close = %d", hub.Len())
	}
}

func TestHubDropsStalledClient(t *testing.T) {
	hub := NewHub()
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		accepted <- conn
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer peer.Close()
	conn := <-accepted
	defer conn.Close()

	// No writer drains this client, so its queue fills up.
	stalled := &client{conn: conn, send: make(chan events.Event, 1)}
	hub.mu.Lock()
	hub.clients[stalled] = true
	hub.mu.Unlock()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := hub.Publish(context.Background(), events.New(events.PostCreated, "p1", "alice")); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Publish blocked for %v on a stalled client", elapsed)
	}
	if hub.Len() != 0 {
		t.Errorf("clients = %d, want stalled client dropped", hub.Len())
	}
	if _, ok := <-stalled.send; !ok {
		t.Error("queued event lost before the queue was closed")
	}
	if _, ok := <-stalled.send; ok {
		t.Error("send queue still open after drop")
	}
}
