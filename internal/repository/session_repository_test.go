package repository_test

import (
	"context"
	"testing"
	"time"

	"blogforge/internal/repository"
	redisapp "blogforge/internal/storage/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepo(t *testing.T) (*repository.RedisSessionRepo, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	repo := repository.NewRedisSessionRepo(&redisapp.Client{Client: db})

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
	})

	return repo, mock
}

func TestRedisSessionRepo_SaveSession(t *testing.T) {
	ctx := context.Background()
	repo, mock := newSessionRepo(t)

	mock.ExpectSet("session:user-1:tok-abc", "1", time.Hour).SetVal("OK")

	err := repo.SaveSession(ctx, "user-1", "tok-abc", time.Hour)
	assert.NoError(t, err)
}

func TestRedisSessionRepo_SessionActive(t *testing.T) {
	ctx := context.Background()

	t.Run("active session", func(t *testing.T) {
		repo, mock := newSessionRepo(t)

		mock.ExpectGet("session:user-1:tok-abc").SetVal("1")

		active, err := repo.SessionActive(ctx, "user-1", "tok-abc")
		assert.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("unknown token is not an error", func(t *testing.T) {
		repo, mock := newSessionRepo(t)

		mock.ExpectGet("session:user-1:tok-gone").RedisNil()

		active, err := repo.SessionActive(ctx, "user-1", "tok-gone")
		assert.NoError(t, err)
		assert.False(t, active)
	})
}

func TestRedisSessionRepo_DeleteSession(t *testing.T) {
	ctx := context.Background()
	repo, mock := newSessionRepo(t)

	mock.ExpectDel("session:user-1:tok-abc").SetVal(1)

	err := repo.DeleteSession(ctx, "user-1", "tok-abc")
	assert.NoError(t, err)
}

func TestRedisSessionRepo_DeleteAllUserSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("all keys removed", func(t *testing.T) {
		repo, mock := newSessionRepo(t)

		mock.ExpectKeys("session:user-1:*").SetVal([]string{
			"session:user-1:tok-a",
			"session:user-1:tok-b",
		})
		mock.ExpectDel("session:user-1:tok-a", "session:user-1:tok-b").SetVal(2)

		err := repo.DeleteAllUserSessions(ctx, "user-1")
		assert.NoError(t, err)
	})

	t.Run("no sessions is a no-op", func(t *testing.T) {
		repo, mock := newSessionRepo(t)

		mock.ExpectKeys("session:user-1:*").SetVal([]string{})

		err := repo.DeleteAllUserSessions(ctx, "user-1")
		assert.NoError(t, err)
	})
}
