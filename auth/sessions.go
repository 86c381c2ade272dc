package auth

import (
	"context"
	"time"
)

// SessionStore persists issued sessions by access token.
type SessionStore interface {
	Find(ctx context.Context, token string) (*Session, error)
	Create(ctx context.Context, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
	Close() error
}
