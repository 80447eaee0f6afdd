package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLock_AcquireRelease(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := NewRedisLock(client, "campaign:1", time.Minute)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	// A second lock on the same key cannot acquire while held.
	other := NewRedisLock(client, "campaign:1", time.Minute)
	ok, err = other.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(context.Background()))

	ok, err = other.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ReleaseOnlyByOwner(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	owner := NewRedisLock(client, "campaign:2", time.Minute)
	require.NoError(t, mustAcquire(t, owner))

	intruder := NewRedisLock(client, "campaign:2", time.Minute)
	require.NoError(t, intruder.Release(context.Background()))

	// Still held: the intruder's release was a no-op against a key it never owned.
	ok, err := NewRedisLock(client, "campaign:2", time.Minute).Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func mustAcquire(t *testing.T, l *RedisLock) error {
	t.Helper()
	ok, err := l.Acquire(context.Background())
	if err == nil && !ok {
		t.Fatalf("expected to acquire lock")
	}
	return err
}

func TestPGAdvisoryLock_AcquireRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lock := NewPGAdvisoryLock(db, "campaign:3")

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WithArgs(lock.lockID).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec("SELECT pg_advisory_unlock").
		WithArgs(lock.lockID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, lock.Release(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewLock_PrefersRedisWhenClientProvided(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := NewLock(client, nil, "campaign:4", time.Minute)
	_, ok := lock.(*RedisLock)
	assert.True(t, ok, "expected RedisLock when a redis client is provided")
}

func TestNewLock_FallsBackToPostgresWithoutRedis(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lock := NewLock(nil, db, "campaign:5", time.Minute)
	_, ok := lock.(*PGAdvisoryLock)
	assert.True(t, ok, "expected PGAdvisoryLock when redis client is nil")
}

func TestCampaignKey_IsStableForSameCampaign(t *testing.T) {
	assert.Equal(t, "lifecycle:c1", CampaignKey("c1"))
	assert.NotEqual(t, CampaignKey("c1"), CampaignKey("c2"))
}
