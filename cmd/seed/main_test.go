package main

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"postboard/auth"
	"postboard/database"
)

func TestSeed(t *testing.T) {
	gofakeit.Seed(42)
	ctx := context.Background()
	store, err := database.OpenJSON(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	creds := auth.NewCredentials(store)
	creds.Cost = bcrypt.MinCost

	usernames, err := seedUsers(ctx, creds, 5)
	if err != nil {
		t.Fatalf("seedUsers: %v", err)
	}
	if len(usernames) != 5 {
		t.Fatalf("users = %d, want 5", len(usernames))
	}
	if _, err := creds.Verify(ctx, usernames[0], seedPassword); err != nil {
		t.Errorf("seeded user cannot log in: %v", err)
	}

	if err := seedPosts(ctx, store, usernames, 8); err != nil {
		t.Fatalf("seedPosts: %v", err)
	}
	posts, _ := store.ListPosts(ctx)
	if len(posts) != 8 {
		t.Errorf("posts = %d, want 8", len(posts))
	}
	for _, p := range posts {
		if p.Likes != len(p.LikedBy) {
			t.Errorf("post %s: likes %d != likedBy %d", p.ID, p.Likes, len(p.LikedBy))
		}
	}
}
