package identity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"blogforge/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// memorySessions is an in-memory SessionRepository.
type memorySessions struct {
	keys map[string]struct{}
	err  error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{keys: make(map[string]struct{})}
}

func (m *memorySessions) SaveSession(ctx context.Context, userID, token string, exp time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.keys[userID+":"+token] = struct{}{}
	return nil
}

func (m *memorySessions) SessionActive(ctx context.Context, userID, token string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.keys[userID+":"+token]
	return ok, nil
}

func (m *memorySessions) DeleteSession(ctx context.Context, userID, token string) error {
	delete(m.keys, userID+":"+token)
	return nil
}

func (m *memorySessions) DeleteAllUserSessions(ctx context.Context, userID string) error {
	for key := range m.keys {
		if len(key) > len(userID) && key[:len(userID)] == userID {
			delete(m.keys, key)
		}
	}
	return nil
}

func TestService_CurrentUser(t *testing.T) {
	user := models.User{
		ID:    uuid.New(),
		Name:  "author",
		Email: "author@example.com",
	}

	t.Run("issued token resolves the user", func(t *testing.T) {
		sessions := newMemorySessions()
		service := New(slog.Default(), sessions, testSecret, time.Hour)

		token, err := service.Issue(context.Background(), user)
		require.NoError(t, err)

		ctx := ContextWithToken(context.Background(), token)

		got, err := service.CurrentUser(ctx)

		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("missing token", func(t *testing.T) {
		service := New(slog.Default(), newMemorySessions(), testSecret, time.Hour)

		_, err := service.CurrentUser(context.Background())

		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		service := New(slog.Default(), newMemorySessions(), testSecret, time.Hour)

		ctx := ContextWithToken(context.Background(), "not-a-jwt")

		_, err := service.CurrentUser(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("revoked session rejects a valid token", func(t *testing.T) {
		sessions := newMemorySessions()
		service := New(slog.Default(), sessions, testSecret, time.Hour)

		token, err := service.Issue(context.Background(), user)
		require.NoError(t, err)

		require.NoError(t, service.Revoke(context.Background(), user, token))

		ctx := ContextWithToken(context.Background(), token)

		_, err = service.CurrentUser(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := New(slog.Default(), newMemorySessions(), "other-secret", time.Hour)
		token, err := other.Issue(context.Background(), user)
		require.NoError(t, err)

		service := New(slog.Default(), newMemorySessions(), testSecret, time.Hour)
		ctx := ContextWithToken(context.Background(), token)

		_, err = service.CurrentUser(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestTokenFromContext(t *testing.T) {
	_, ok := TokenFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithToken(context.Background(), "tok")
	token, ok := TokenFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
}
