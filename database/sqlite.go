package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mattn/go-sqlite3"

	"postboard/models"
)

type SQLiteStore struct {
	db *sql.DB
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// A single connection serializes every read-modify-write on the file.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) createTables() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            username TEXT PRIMARY KEY,
            password TEXT NOT NULL
        )
    `)
	if err != nil {
		log.Printf("Error creating 'users' table: %v", err)
		return err
	}

	// seq keeps insertion order so listings can be newest first
	_, err = s.db.Exec(`
        CREATE TABLE IF NOT EXISTS posts (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT UNIQUE NOT NULL,
            username TEXT NOT NULL,
            content TEXT NOT NULL,
            image TEXT NOT NULL DEFAULT '',
            likes INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
            created_at DATETIME NOT NULL
        );
    `)
	if err != nil {
		log.Printf("Error creating 'posts' table: %v", err)
		return err
	}

	_, err = s.db.Exec(`
        CREATE TABLE IF NOT EXISTS comments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            post_id TEXT NOT NULL,
            username TEXT NOT NULL,
            content TEXT NOT NULL,
            timestamp DATETIME NOT NULL,
            FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE
        );
    `)
	if err != nil {
		log.Printf("Error creating 'comments' table: %v", err)
		return err
	}

	_, err = s.db.Exec(`
        CREATE TABLE IF NOT EXISTS post_likes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            post_id TEXT NOT NULL,
            username TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE,
            UNIQUE (post_id, username)
        );
    `)
	if err != nil {
		log.Printf("Error creating 'post_likes' table: %v", err)
		return err
	}

	return nil
}

func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)",
		username, passwordHash,
	)
	if isConstraintErr(err) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return models.User{Username: username, Password: passwordHash}, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (models.User, error) {
	u := models.User{Username: username}
	err := s.db.QueryRowContext(ctx,
		"SELECT password FROM users WHERE username = ?", username,
	).Scan(&u.Password)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) CreatePost(ctx context.Context, author, content, image string) (models.Post, error) {
	id, err := newPostID()
	if err != nil {
		return models.Post{}, err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO posts (id, username, content, image, likes, created_at) VALUES (?, ?, ?, ?, 0, ?)",
		id, author, content, image, now,
	)
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	p := models.Post{ID: id, Author: author, Content: content, Image: image, CreatedAt: now}
	p.Normalize()
	return p, nil
}

// ListPosts reads posts, likes and comments inside one transaction so a like
// committed mid-read cannot split likes from likedBy.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	return listSQLitePosts(ctx, tx)
}

func listSQLitePosts(ctx context.Context, q queryer) ([]models.Post, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, username, content, image, likes, created_at FROM posts ORDER BY seq DESC")
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	posts := []models.Post{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Author, &p.Content, &p.Image, &p.Likes, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Normalize()
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	likeRows, err := q.QueryContext(ctx, "SELECT post_id, username FROM post_likes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	for likeRows.Next() {
		var postID, username string
		if err := likeRows.Scan(&postID, &username); err != nil {
			likeRows.Close()
			return nil, fmt.Errorf("scan like: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].LikedBy = append(posts[i].LikedBy, username)
		}
	}
	likeRows.Close()
	if err := likeRows.Err(); err != nil {
		return nil, err
	}

	commentRows, err := q.QueryContext(ctx,
		"SELECT post_id, username, content, timestamp FROM comments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var postID string
		var c models.Comment
		if err := commentRows.Scan(&postID, &c.Author, &c.Content, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return posts, commentRows.Err()
}

func (s *SQLiteStore) GetPost(ctx context.Context, id string) (models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	return loadSQLitePost(ctx, tx, id)
}

func loadSQLitePost(ctx context.Context, q queryer, id string) (models.Post, error) {
	var p models.Post
	err := q.QueryRowContext(ctx,
		"SELECT id, username, content, image, likes, created_at FROM posts WHERE id = ?", id,
	).Scan(&p.ID, &p.Author, &p.Content, &p.Image, &p.Likes, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("select post: %w", err)
	}
	p.Normalize()

	likeRows, err := q.QueryContext(ctx, "SELECT username FROM post_likes WHERE post_id = ? ORDER BY id", id)
	if err != nil {
		return models.Post{}, fmt.Errorf("query likes: %w", err)
	}
	for likeRows.Next() {
		var username string
		if err := likeRows.Scan(&username); err != nil {
			likeRows.Close()
			return models.Post{}, fmt.Errorf("scan like: %w", err)
		}
		p.LikedBy = append(p.LikedBy, username)
	}
	likeRows.Close()
	if err := likeRows.Err(); err != nil {
		return models.Post{}, err
	}

	commentRows, err := q.QueryContext(ctx,
		"SELECT username, content, timestamp FROM comments WHERE post_id = ? ORDER BY id", id)
	if err != nil {
		return models.Post{}, fmt.Errorf("query comments: %w", err)
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var c models.Comment
		if err := commentRows.Scan(&c.Author, &c.Content, &c.Timestamp); err != nil {
			return models.Post{}, fmt.Errorf("scan comment: %w", err)
		}
		p.Comments = append(p.Comments, c)
	}
	return p, commentRows.Err()
}

func (s *SQLiteStore) AddComment(ctx context.Context, postID, author, content string) (models.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Comment{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)", postID).Scan(&exists)
	if err != nil {
		return models.Comment{}, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return models.Comment{}, ErrPostNotFound
	}

	c := models.Comment{Author: author, Content: content, Timestamp: time.Now().UTC()}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO comments (post_id, username, content, timestamp) VALUES (?, ?, ?, ?)",
		postID, author, content, c.Timestamp,
	)
	if err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Comment{}, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) LikePost(ctx context.Context, postID, username string) (models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)", postID).Scan(&exists)
	if err != nil {
		return models.Post{}, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return models.Post{}, ErrPostNotFound
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO post_likes (post_id, username, created_at) VALUES (?, ?, ?)",
		postID, username, time.Now().UTC(),
	)
	if isConstraintErr(err) {
		return models.Post{}, ErrAlreadyLiked
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("insert like: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE posts SET likes = likes + 1 WHERE id = ?", postID); err != nil {
		return models.Post{}, fmt.Errorf("update likes: %w", err)
	}

	p, err := loadSQLitePost(ctx, tx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Post{}, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}
