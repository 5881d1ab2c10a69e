package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueVerifyRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != "alice" {
		t.Errorf("Verify = %q, want alice", got)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := &Tokens{Secret: []byte("secret"), TTL: time.Hour, Now: fixedClock(issuedAt)}
	tok, err := tokens.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}

	tokens.Now = fixedClock(issuedAt.Add(59 * time.Minute))
	if _, err := tokens.Verify(tok); err != nil {
		t.Errorf("Verify before expiry: %v", err)
	}

	tokens.Now = fixedClock(issuedAt.Add(61 * time.Minute))
	if _, err := tokens.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify after expiry err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	exp := time.Now().Add(time.Hour).Unix()

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	cases := map[string]string{
		"garbage":       "not-a-token",
		"empty":         "",
		"wrong secret":  sign(jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"username": "alice", "exp": exp}),
		"sub claim":     sign(jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"sub": "alice", "exp": exp}),
		"no expiry":     sign(jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"username": "alice"}),
		"empty name":    sign(jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"username": "", "exp": exp}),
		"other hmac":    sign(jwt.SigningMethodHS512, []byte("secret"), jwt.MapClaims{"username": "alice", "exp": exp}),
		"unsigned none": sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"username": "alice", "exp": exp}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if got, err := tokens.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify = %q, %v; want ErrInvalidToken", got, err)
			}
		})
	}
}

func TestTamperedPayload(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	alice, _ := tokens.Issue("alice")
	bob, _ := tokens.Issue("bob")

	// header.payload.signature: graft bob's payload onto alice's signature
	a, b := strings.Split(alice, "."), strings.Split(bob, ".")
	forged := a[0] + "." + b[1] + "." + a[2]
	if _, err := tokens.Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("forged token err = %v, want ErrInvalidToken", err)
	}
}
