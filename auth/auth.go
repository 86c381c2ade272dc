// Package auth is the identity provider: it verifies access tokens, keeps the
// current session and tells subscribers when it changes.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid access token")
)

// Provider is what the rest of the application needs from an identity service.
type Provider interface {
	Session(ctx context.Context) (*Session, error)
	User(ctx context.Context) (*User, error)
	OnSessionChange(fn func(Event)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email,omitempty"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

type Session struct {
	Token     string    `json:"access_token"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type EventType int

const (
	SignedIn EventType = iota
	SignedOut
)

func (e EventType) String() string {
	switch e {
	case SignedIn:
		return "SIGNED_IN"
	case SignedOut:
		return "SIGNED_OUT"
	}

	return "UNKNOWN"
}

// Event is delivered to subscribers on every session transition. Session is
// nil for SignedOut.
type Event struct {
	Type    EventType
	Session *Session
}
