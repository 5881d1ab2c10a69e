package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"postboard/database"
	"postboard/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials validates and creates user records. Passwords are stored as
// bcrypt hashes only.
type Credentials struct {
	Users database.UserStore
	Cost  int
}

func NewCredentials(users database.UserStore) *Credentials {
	return &Credentials{Users: users, Cost: bcrypt.DefaultCost}
}

// Create fails with database.ErrUsernameTaken when the username exists.
func (c *Credentials) Create(ctx context.Context, username, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.Cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return c.Users.CreateUser(ctx, username, string(hash))
}

func (c *Credentials) Verify(ctx context.Context, username, password string) (models.User, error) {
	u, err := c.Users.GetUser(ctx, username)
	if errors.Is(err, database.ErrUserNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}
