package auth

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
)

type inMemory struct {
	cache *cache.Cache
}

func NewMemory() SessionStore {
	return &inMemory{cache: cache.New(cache.NoExpiration, 5*time.Minute)}
}

func (m inMemory) Find(_ context.Context, token string) (*Session, error) {
	s, ok := m.cache.Get(m.key(token))
	if !ok {
		return nil, ErrNotFound
	}

	return s.(*Session), nil
}

func (m inMemory) Create(_ context.Context, session *Session, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	m.cache.Set(m.key(session.Token), session, ttl)
	return nil
}

func (m inMemory) Delete(_ context.Context, token string) error {
	if _, ok := m.cache.Get(m.key(token)); !ok {
		return ErrNotFound
	}

	m.cache.Delete(m.key(token))
	return nil
}

func (m inMemory) key(token string) string {
	return "session:" + token
}

func (m inMemory) Close() error {
	m.cache.Flush()
	return nil
}
