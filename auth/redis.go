package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type redisStore struct {
	client *redis.Client
}

func NewRedis(addr string) (SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		MaxRetries: 5,
	})

	status := client.Ping(context.Background())
	if status.Err() != nil {
		return nil, status.Err()
	}

	return &redisStore{client}, nil
}

type redisSession struct {
	Token     string `redis:"token"`
	UserID    string `redis:"user_id"`
	Email     string `redis:"email"`
	Metadata  string `redis:"metadata"`
	ExpiresAt int64  `redis:"expires_at"`
}

func (rs redisStore) exists(ctx context.Context, key string) error {
	exists, err := rs.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	if exists == 0 {
		return ErrNotFound
	}

	return nil
}

func (rs redisStore) Find(ctx context.Context, token string) (*Session, error) {
	var (
		raw redisSession
		key = rs.key(token)
	)

	if err := rs.exists(ctx, key); err != nil {
		return nil, err
	}

	if err := rs.client.HGetAll(ctx, key).Scan(&raw); err != nil {
		return nil, err
	}

	session := &Session{
		Token: raw.Token,
		User:  &User{ID: raw.UserID, Email: raw.Email},
	}

	if raw.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(raw.ExpiresAt, 0).UTC()
	}

	if raw.Metadata != "" {
		if err := json.Unmarshal([]byte(raw.Metadata), &session.User.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode user metadata: %w", err)
		}
	}

	return session, nil
}

func (rs redisStore) Create(ctx context.Context, session *Session, ttl time.Duration) error {
	metadata := []byte{}
	if len(session.User.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(session.User.Metadata); err != nil {
			return fmt.Errorf("failed to encode user metadata: %w", err)
		}
	}

	var expiresAt int64
	if !session.ExpiresAt.IsZero() {
		expiresAt = session.ExpiresAt.Unix()
	}

	key := rs.key(session.Token)
	_, err := rs.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if _, err := pipe.HSet(ctx, key, map[string]any{
			"token":      session.Token,
			"user_id":    session.User.ID,
			"email":      session.User.Email,
			"metadata":   string(metadata),
			"expires_at": expiresAt,
		}).Result(); err != nil {
			return err
		}

		if ttl > 0 {
			if _, err := pipe.ExpireAt(ctx, key, time.Now().Add(ttl)).Result(); err != nil {
				return err
			}
		}

		return nil
	})

	return err
}

func (rs redisStore) Delete(ctx context.Context, token string) error {
	key := rs.key(token)
	if err := rs.exists(ctx, key); err != nil {
		return err
	}

	return rs.client.Del(ctx, key).Err()
}

func (rs redisStore) key(token string) string {
	return "session:" + token
}

func (rs redisStore) Close() error {
	return rs.client.Close()
}
