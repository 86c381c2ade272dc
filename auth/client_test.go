package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret"

func signToken(t *testing.T, secret string, c claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func userClaims(sub string, exp time.Time) claims {
	return claims{
		Email:    sub + "@example.com",
		Metadata: map[string]any{"full_name": "Test User"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}

	return types
}

func TestClient_SignInAndOut(t *testing.T) {
	ctx := context.Background()
	c := NewClient(testSecret, NewMemory())
	defer c.Close()

	rec := &recorder{}
	unsubscribe := c.OnSessionChange(rec.record)
	defer unsubscribe()

	session, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	token := signToken(t, testSecret, userClaims("user-1", time.Now().Add(time.Hour)))
	session, err = c.SignIn(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, "user-1@example.com", session.User.Email)
	assert.Equal(t, "Test User", session.User.Metadata["full_name"])

	id, err := c.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	require.NoError(t, c.SignOut(ctx))
	user, err := c.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.Equal(t, []EventType{SignedIn, SignedOut}, rec.types())
	assert.Nil(t, rec.events[1].Session)
}

func TestClient_SignInRejectsInvalidTokens(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"wrong secret", func(t *testing.T) string {
			return signToken(t, "other-secret", userClaims("user-1", time.Now().Add(time.Hour)))
		}},
		{"expired", func(t *testing.T) string {
			return signToken(t, testSecret, userClaims("user-1", time.Now().Add(-time.Hour)))
		}},
		{"missing subject", func(t *testing.T) string {
			return signToken(t, testSecret, userClaims("", time.Now().Add(time.Hour)))
		}},
		{"garbage", func(t *testing.T) string {
			return "not-a-jwt"
		}},
		{"wrong algorithm", func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, userClaims("user-1", time.Now().Add(time.Hour))).
				SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return token
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(testSecret, NewMemory())
			defer c.Close()

			rec := &recorder{}
			c.OnSessionChange(rec.record)

			_, err := c.SignIn(ctx, tt.token(t))
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, rec.types())

			session, err := c.Session(ctx)
			require.NoError(t, err)
			assert.Nil(t, session)
		})
	}
}

func TestClient_SessionExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	c := NewClient(testSecret, NewMemory())
	defer c.Close()
	c.now = func() time.Time { return now }

	_, err := c.SignIn(ctx, signToken(t, testSecret, userClaims("user-1", now.Add(time.Minute))))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	session, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestClient_WithTokenRestoresSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemory()

	first := NewClient(testSecret, sessions)
	token := signToken(t, testSecret, userClaims("user-1", time.Now().Add(time.Hour)))
	_, err := first.SignIn(ctx, token)
	require.NoError(t, err)

	second := NewClient(testSecret, sessions, WithToken(token))
	rec := &recorder{}
	second.OnSessionChange(rec.record)

	user, err := second.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	assert.Empty(t, rec.types())

	unknown := NewClient(testSecret, NewMemory(), WithToken("stale"))
	user, err = unknown.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	c := NewClient(testSecret, NewMemory())
	defer c.Close()

	rec := &recorder{}
	unsubscribe := c.OnSessionChange(rec.record)
	unsubscribe()
	unsubscribe()

	_, err := c.SignIn(ctx, signToken(t, testSecret, userClaims("user-1", time.Now().Add(time.Hour))))
	require.NoError(t, err)
	assert.Empty(t, rec.types())
}

func TestClient_SignOutWithoutSession(t *testing.T) {
	c := NewClient(testSecret, NewMemory())
	defer c.Close()

	rec := &recorder{}
	c.OnSessionChange(rec.record)

	assert.NoError(t, c.SignOut(context.Background()))
	assert.Empty(t, rec.types())
}
