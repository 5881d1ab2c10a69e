package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"postboard/models"
)

const pgUniqueViolation = "23505"

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		username TEXT NOT NULL,
		content TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		likes INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		username TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
		id BIGSERIAL PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		username TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (post_id, username)
	)`,
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and makes sure the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 20
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range pgSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Printf("Error creating schema: %v", err)
			pool.Close()
			return nil, err
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO users (username, password) VALUES ($1, $2)",
		username, passwordHash,
	)
	if isUniqueViolation(err) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return models.User{Username: username, Password: passwordHash}, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, username string) (models.User, error) {
	u := models.User{Username: username}
	err := s.pool.QueryRow(ctx, "SELECT password FROM users WHERE username = $1", username).Scan(&u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, author, content, image string) (models.Post, error) {
	id, err := newPostID()
	if err != nil {
		return models.Post{}, err
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		"INSERT INTO posts (id, username, content, image, likes, created_at) VALUES ($1, $2, $3, $4, 0, $5)",
		id, author, content, image, now,
	)
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	p := models.Post{ID: id, Author: author, Content: content, Image: image, CreatedAt: now}
	p.Normalize()
	return p, nil
}

// readSnapshot runs fn in a read-only REPEATABLE READ transaction so every
// statement sees the same committed state.
func (s *PostgresStore) readSnapshot(ctx context.Context, fn func(q pgQueryer) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.readSnapshot(ctx, func(q pgQueryer) error {
		var err error
		posts, err = listPostgresPosts(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func listPostgresPosts(ctx context.Context, q pgQueryer) ([]models.Post, error) {
	rows, err := q.Query(ctx,
		"SELECT id, username, content, image, likes, created_at FROM posts ORDER BY seq DESC")
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Post, error) {
		var p models.Post
		err := row.Scan(&p.ID, &p.Author, &p.Content, &p.Image, &p.Likes, &p.CreatedAt)
		p.Normalize()
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		index[p.ID] = i
	}

	likeRows, err := q.Query(ctx, "SELECT post_id, username FROM post_likes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	var postID, username string
	_, err = pgx.ForEachRow(likeRows, []any{&postID, &username}, func() error {
		if i, ok := index[postID]; ok {
			posts[i].LikedBy = append(posts[i].LikedBy, username)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan likes: %w", err)
	}

	commentRows, err := q.Query(ctx,
		"SELECT post_id, username, content, timestamp FROM comments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	var c models.Comment
	_, err = pgx.ForEachRow(commentRows, []any{&postID, &c.Author, &c.Content, &c.Timestamp}, func() error {
		if i, ok := index[postID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

type pgQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (models.Post, error) {
	var p models.Post
	err := s.readSnapshot(ctx, func(q pgQueryer) error {
		var err error
		p, err = loadPostgresPost(ctx, q, id)
		return err
	})
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func loadPostgresPost(ctx context.Context, q pgQueryer, id string) (models.Post, error) {
	var p models.Post
	err := q.QueryRow(ctx,
		"SELECT id, username, content, image, likes, created_at FROM posts WHERE id = $1", id,
	).Scan(&p.ID, &p.Author, &p.Content, &p.Image, &p.Likes, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("select post: %w", err)
	}
	p.Normalize()

	likeRows, err := q.Query(ctx, "SELECT username FROM post_likes WHERE post_id = $1 ORDER BY id", id)
	if err != nil {
		return models.Post{}, fmt.Errorf("query likes: %w", err)
	}
	likedBy, err := pgx.CollectRows(likeRows, pgx.RowTo[string])
	if err != nil {
		return models.Post{}, fmt.Errorf("scan likes: %w", err)
	}
	p.LikedBy = append(p.LikedBy, likedBy...)

	commentRows, err := q.Query(ctx,
		"SELECT username, content, timestamp FROM comments WHERE post_id = $1 ORDER BY id", id)
	if err != nil {
		return models.Post{}, fmt.Errorf("query comments: %w", err)
	}
	var c models.Comment
	_, err = pgx.ForEachRow(commentRows, []any{&c.Author, &c.Content, &c.Timestamp}, func() error {
		p.Comments = append(p.Comments, c)
		return nil
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("scan comments: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) AddComment(ctx context.Context, postID, author, content string) (models.Comment, error) {
	c := models.Comment{Author: author, Content: content, Timestamp: time.Now().UTC()}
	// The insert only happens when the post exists, in a single statement.
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO comments (post_id, username, content, timestamp)
		SELECT id, $2, $3, $4 FROM posts WHERE id = $1`,
		postID, author, content, c.Timestamp,
	)
	if err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Comment{}, ErrPostNotFound
	}
	return c, nil
}

func (s *PostgresStore) LikePost(ctx context.Context, postID, username string) (models.Post, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var likes int
	err = tx.QueryRow(ctx, "SELECT likes FROM posts WHERE id = $1 FOR UPDATE", postID).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("lock post: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO post_likes (post_id, username, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (post_id, username) DO NOTHING`,
		postID, username, time.Now().UTC(),
	)
	if err != nil {
		return models.Post{}, fmt.Errorf("insert like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Post{}, ErrAlreadyLiked
	}

	if _, err := tx.Exec(ctx, "UPDATE posts SET likes = likes + 1 WHERE id = $1", postID); err != nil {
		return models.Post{}, fmt.Errorf("update likes: %w", err)
	}

	p, err := loadPostgresPost(ctx, tx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Post{}, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}
