package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// UsernameClaim is the single claim carrying the caller's identity.
const UsernameClaim = "username"

// Tokens issues and verifies HS256 session tokens. The server keeps no
// session state; a token is valid until its exp claim passes.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (t *Tokens) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *Tokens) Issue(username string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		UsernameClaim: username,
		"iat":         now.Unix(),
		"exp":         now.Add(t.TTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.Secret)
}

func (t *Tokens) Verify(token string) (string, error) {
	tok, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}
	username, _ := mc[UsernameClaim].(string)
	if username == "" {
		return "", fmt.Errorf("%w: missing %s claim", ErrInvalidToken, UsernameClaim)
	}
	return username, nil
}
