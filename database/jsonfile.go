package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"postboard/models"
)

// JSONStore keeps users and posts as two JSON documents that are rewritten
// wholesale on every mutation.
type JSONStore struct {
	usersPath string
	postsPath string

	usersMu sync.Mutex
	postsMu sync.Mutex
}

type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func OpenJSON(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{
		usersPath: filepath.Join(dir, "users.json"),
		postsPath: filepath.Join(dir, "posts.json"),
	}, nil
}

func (s *JSONStore) Close() error { return nil }

// readDocument decodes path into v. A missing file leaves v untouched.
func readDocument(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeDocument replaces path atomically: the data goes to a temp file in the
// same directory which is then renamed over the original.
func writeDocument(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *JSONStore) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	var users []userRecord
	if err := readDocument(s.usersPath, &users); err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return models.User{}, ErrUsernameTaken
		}
	}
	users = append(users, userRecord{Username: username, Password: passwordHash})
	if err := writeDocument(s.usersPath, users); err != nil {
		return models.User{}, err
	}
	return models.User{Username: username, Password: passwordHash}, nil
}

func (s *JSONStore) GetUser(ctx context.Context, username string) (models.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	var users []userRecord
	if err := readDocument(s.usersPath, &users); err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return models.User{Username: u.Username, Password: u.Password}, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// updatePosts runs fn over the full post list under the document lock and
// persists the result when fn returns nil.
func (s *JSONStore) updatePosts(fn func(posts []models.Post) ([]models.Post, error)) error {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	var posts []models.Post
	if err := readDocument(s.postsPath, &posts); err != nil {
		return err
	}
	posts, err := fn(posts)
	if err != nil {
		return err
	}
	return writeDocument(s.postsPath, posts)
}

func findPost(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *JSONStore) CreatePost(ctx context.Context, author, content, image string) (models.Post, error) {
	id, err := newPostID()
	if err != nil {
		return models.Post{}, err
	}
	p := models.Post{
		ID:        id,
		Author:    author,
		Content:   content,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	p.Normalize()
	err = s.updatePosts(func(posts []models.Post) ([]models.Post, error) {
		return append([]models.Post{p}, posts...), nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *JSONStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	posts := []models.Post{}
	if err := readDocument(s.postsPath, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (s *JSONStore) GetPost(ctx context.Context, id string) (models.Post, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return models.Post{}, err
	}
	i := findPost(posts, id)
	if i < 0 {
		return models.Post{}, ErrPostNotFound
	}
	return posts[i], nil
}

func (s *JSONStore) AddComment(ctx context.Context, postID, author, content string) (models.Comment, error) {
	c := models.Comment{Author: author, Content: content, Timestamp: time.Now().UTC()}
	err := s.updatePosts(func(posts []models.Post) ([]models.Post, error) {
		i := findPost(posts, postID)
		if i < 0 {
			return nil, ErrPostNotFound
		}
		posts[i].Comments = append(posts[i].Comments, c)
		return posts, nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

func (s *JSONStore) LikePost(ctx context.Context, postID, username string) (models.Post, error) {
	var liked models.Post
	err := s.updatePosts(func(posts []models.Post) ([]models.Post, error) {
		i := findPost(posts, postID)
		if i < 0 {
			return nil, ErrPostNotFound
		}
		if posts[i].HasLiked(username) {
			return nil, ErrAlreadyLiked
		}
		posts[i].LikedBy = append(posts[i].LikedBy, username)
		posts[i].Likes = len(posts[i].LikedBy)
		liked = posts[i]
		return posts, nil
	})
	if err != nil {
		return models.Post{}, err
	}
	liked.Normalize()
	return liked, nil
}
