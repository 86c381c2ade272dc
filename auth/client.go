package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache"
	"github.com/golang-jwt/jwt/v5"
)

// Client verifies HS256 access tokens issued by the account backend and keeps
// track of the session they open.
type Client struct {
	secret   []byte
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
	cache    *ttlcache.Cache

	mu        sync.RWMutex
	token     string
	listeners map[int]func(Event)
	nextID    int
}

type Option func(*Client)

// WithToken restores a token issued in a previous run. It becomes current
// without notifying subscribers; startup probes pick it up through Session.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithSessionTTL bounds how long a session lives when the token carries no exp claim.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithLookupCache sets how long resolved sessions are memoised.
func WithLookupCache(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache.SetTTL(ttl)
	}
}

func NewClient(secret string, sessions SessionStore, opts ...Option) *Client {
	lookups := ttlcache.NewCache()
	lookups.SetTTL(15 * time.Second)

	c := &Client{
		secret:    []byte(secret),
		sessions:  sessions,
		ttl:       7 * 24 * time.Hour,
		now:       time.Now,
		cache:     lookups,
		listeners: make(map[int]func(Event)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type claims struct {
	Email    string         `json:"email,omitempty"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// SignIn verifies accessToken, stores the session and makes it current.
func (c *Client) SignIn(ctx context.Context, accessToken string) (*Session, error) {
	session, err := c.parse(accessToken)
	if err != nil {
		return nil, err
	}

	ttl := c.ttl
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(c.now())
	}

	if err := c.sessions.Create(ctx, session, ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	c.mu.Lock()
	c.token = session.Token
	c.mu.Unlock()

	c.cache.Set(session.Token, session)
	c.emit(Event{Type: SignedIn, Session: session})
	return session, nil
}

func (c *Client) parse(accessToken string) (*Session, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(accessToken, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if cl.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &Session{
		Token: accessToken,
		User: &User{
			ID:       cl.Subject,
			Email:    cl.Email,
			Metadata: cl.Metadata,
		},
	}

	if cl.ExpiresAt != nil {
		session.ExpiresAt = cl.ExpiresAt.Time.UTC()
	}

	return session, nil
}

// Session returns the current session, or nil when nobody is signed in or the
// session has expired.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == "" {
		return nil, nil
	}

	if s, ok := c.cache.Get(token); ok {
		session := s.(*Session)
		if !session.Expired(c.now()) {
			return session, nil
		}

		c.cache.Remove(token)
		return nil, nil
	}

	session, err := c.sessions.Find(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.Expired(c.now()) {
		return nil, nil
	}

	c.cache.Set(token, session)
	return session, nil
}

func (c *Client) User(ctx context.Context) (*User, error) {
	session, err := c.Session(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	return session.User, nil
}

// UserID returns an empty string when nobody is signed in.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.User(ctx)
	if err != nil || user == nil {
		return "", err
	}

	return user.ID, nil
}

func (c *Client) OnSessionChange(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			delete(c.listeners, id)
		})
	}
}

// SignOut forgets the current session. Subscribers are notified even if the
// session was already gone from the store.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.token = ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	c.cache.Remove(token)
	err := c.sessions.Delete(ctx, token)
	c.emit(Event{Type: SignedOut})

	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	c.cache.Close()
	return c.sessions.Close()
}

func (c *Client) emit(e Event) {
	c.mu.RLock()
	listeners := make([]func(Event), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}
