// Package database holds the user and post stores behind the HTTP handlers.
// Three backends share one contract: sqlite3, postgres (pgx) and flat JSON documents.
package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofrs/uuid/v5"

	"postboard/config"
	"postboard/models"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrPostNotFound  = errors.New("post not found")
	ErrAlreadyLiked  = errors.New("already liked")
)

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
}

// PostStore mutations are atomic per post: each one either fully applies and
// is persisted before returning, or leaves the post unchanged.
type PostStore interface {
	CreatePost(ctx context.Context, author, content, image string) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	AddComment(ctx context.Context, postID, author, content string) (models.Comment, error)
	LikePost(ctx context.Context, postID, username string) (models.Post, error)
}

type Store interface {
	UserStore
	PostStore
	Close() error
}

// Open returns the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "sqlite3", "sqlite":
		log.Printf("Using sqlite store at %s", cfg.SQLitePath)
		return OpenSQLite(cfg.SQLitePath)
	case "postgres":
		log.Println("Using postgres store")
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case "json":
		log.Printf("Using JSON document store in %s", cfg.DataDir)
		return OpenJSON(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newPostID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate post id: %w", err)
	}
	return id.String(), nil
}
