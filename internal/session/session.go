// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides the admin session guard. A successful password
// check yields a self-contained token signed with HMAC-SHA256 and carried
// in an http-only cookie. Tokens expire after seven days and can be
// revoked on logout through an optional Revoker.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "mochi_session"

	// DefaultTTL is how long a session token stays valid.
	DefaultTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalidPassword is returned when the submitted password does not
	// match the configured admin password.
	ErrInvalidPassword = errors.New("invalid password")

	// errInvalidToken covers every way a token can fail verification.
	errInvalidToken = errors.New("invalid session token")
)

// Data is the verified content of a session token.
type Data struct {
	ID        string
	IsAdmin   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// claims is the signed token payload.
type claims struct {
	ID        string `json:"id"`
	Admin     bool   `json:"adm"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Options configures a Store.
type Options struct {
	// PasswordHash is the bcrypt hash of the admin password.
	PasswordHash []byte
	// Secret keys the token signature.
	Secret []byte
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// Revoker, when set, lets Logout invalidate tokens before expiry.
	Revoker Revoker
}

// Store issues, verifies and revokes admin sessions.
type Store struct {
	hash    []byte
	secret  []byte
	secure  bool
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

// NewStore creates a session store. Both the password hash and the
// signing secret are required.
func NewStore(opts Options) (*Store, error) {
	if len(opts.PasswordHash) == 0 {
		return nil, errors.New("session: admin password hash is required")
	}
	if len(opts.Secret) == 0 {
		return nil, errors.New("session: signing secret is required")
	}
	return &Store{
		hash:    opts.PasswordHash,
		secret:  opts.Secret,
		secure:  opts.Secure,
		ttl:     DefaultTTL,
		revoker: opts.Revoker,
		now:     time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of a plaintext admin password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Authenticate checks password against the admin hash and returns a fresh
// signed token with its expiry.
func (s *Store) Authenticate(password string) (string, time.Time, error) {
	if bcrypt.CompareHashAndPassword(s.hash, []byte(password)) != nil {
		return "", time.Time{}, ErrInvalidPassword
	}

	now := s.now()
	c := claims{
		ID:        uuid.NewString(),
		Admin:     true,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	token, err := s.sign(c)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Unix(c.ExpiresAt, 0), nil
}

// Verify checks a token's signature, expiry and revocation. It returns nil
// for any token that does not grant admin access. An error is returned
// only when the revocation list cannot be consulted; callers should treat
// that as unauthenticated.
func (s *Store) Verify(ctx context.Context, token string) (*Data, error) {
	c, err := s.parse(token)
	if err != nil {
		return nil, nil
	}
	if !c.Admin {
		return nil, nil
	}

	expires := time.Unix(c.ExpiresAt, 0)
	if !s.now().Before(expires) {
		return nil, nil
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("session revocation check: %w", err)
		}
		if revoked {
			return nil, nil
		}
	}

	return &Data{
		ID:        c.ID,
		IsAdmin:   true,
		IssuedAt:  time.Unix(c.IssuedAt, 0),
		ExpiresAt: expires,
	}, nil
}

// Login authenticates the password and sets the session cookie.
func (s *Store) Login(w http.ResponseWriter, password string) error {
	token, expires, err := s.Authenticate(password)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get verifies the session cookie on the request. Returns nil if no valid
// session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil // No cookie = no session (not an error)
	}
	return s.Verify(ctx, cookie.Value)
}

// Logout revokes the request's session, when a Revoker is configured, and
// clears the cookie.
func (s *Store) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	// Expire the cookie immediately.
	defer http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	if s.revoker == nil {
		return nil
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to revoke
	}
	c, err := s.parse(cookie.Value)
	if err != nil {
		return nil
	}

	remaining := time.Unix(c.ExpiresAt, 0).Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, c.ID, remaining); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

// sign encodes the claims and appends their signature.
func (s *Store) sign(c claims) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + base64.RawURLEncoding.EncodeToString(s.mac(body)), nil
}

// parse checks the signature and decodes the claims. Expiry is not checked.
func (s *Store) parse(token string) (claims, error) {
	var c claims

	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return c, errInvalidToken
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return c, errInvalidToken
	}
	if !hmac.Equal(got, s.mac(body)) {
		return c, errInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return c, errInvalidToken
	}
	if err := json.Unmarshal(payload, &c); err != nil || c.ID == "" {
		return c, errInvalidToken
	}
	return c, nil
}

func (s *Store) mac(body string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(body))
	return h.Sum(nil)
}
