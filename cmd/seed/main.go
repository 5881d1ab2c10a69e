// Command seed fills the configured store with fake users, posts, comments and likes.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/brianvoe/gofakeit/v6"

	"postboard/auth"
	"postboard/config"
	"postboard/database"
)

const seedPassword = "password123"

func main() {
	numUsers := flag.Int("users", 10, "users to create")
	numPosts := flag.Int("posts", 30, "posts to create")
	seed := flag.Int64("seed", 0, "random seed (0 picks one)")
	flag.Parse()

	gofakeit.Seed(*seed)

	ctx := context.Background()
	store, err := database.Open(ctx, config.Load())
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer store.Close()

	usernames, err := seedUsers(ctx, auth.NewCredentials(store), *numUsers)
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}
	if len(usernames) == 0 {
		log.Fatal("no users available to author posts")
	}
	if err := seedPosts(ctx, store, usernames, *numPosts); err != nil {
		log.Fatalf("seed posts: %v", err)
	}
	log.Printf("Seeded %d users and %d posts (password %q)", len(usernames), *numPosts, seedPassword)
}

func seedUsers(ctx context.Context, creds *auth.Credentials, n int) ([]string, error) {
	var usernames []string
	for len(usernames) < n {
		username := gofakeit.Username()
		_, err := creds.Create(ctx, username, seedPassword)
		if errors.Is(err, database.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return usernames, err
		}
		usernames = append(usernames, username)
	}
	return usernames, nil
}

func seedPosts(ctx context.Context, store database.PostStore, usernames []string, n int) error {
	pick := func() string { return usernames[gofakeit.Number(0, len(usernames)-1)] }

	for i := 0; i < n; i++ {
		image := ""
		if gofakeit.Bool() {
			image = gofakeit.URL() + "/" + gofakeit.UUID() + ".jpg"
		}
		post, err := store.CreatePost(ctx, pick(), gofakeit.Sentence(gofakeit.Number(5, 25)), image)
		if err != nil {
			return err
		}

		for c := gofakeit.Number(0, 4); c > 0; c-- {
			if _, err := store.AddComment(ctx, post.ID, pick(), gofakeit.Sentence(gofakeit.Number(3, 12))); err != nil {
				return err
			}
		}
		for l := gofakeit.Number(0, len(usernames)); l > 0; l-- {
			_, err := store.LikePost(ctx, post.ID, pick())
			if err != nil && !errors.Is(err, database.ErrAlreadyLiked) {
				return err
			}
		}
	}
	return nil
}
