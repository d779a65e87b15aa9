package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/repository"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *domain.BookingSession {
	return &domain.BookingSession{
		ID:      "s-1",
		Token:   "tok-1",
		Product: domain.Product{ID: "p-1", Price: domain.RateCard{domain.RentalUnitDay: 10000}},
		Workflow: domain.WorkflowSnapshot{
			State: domain.BookingStateSelectingDates,
		},
	}
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	repo := NewSessionRepository(db, 30*time.Minute)

	sess := testSession()
	data, err := json.Marshal(sess)
	require.NoError(t, err)

	mock.ExpectSetNX("rentflow:session:s-1", data, 30*time.Minute).SetVal(true)
	require.NoError(t, repo.Create(ctx, sess))

	mock.ExpectSetNX("rentflow:session:s-1", data, 30*time.Minute).SetVal(false)
	assert.Error(t, repo.Create(ctx, sess))

	mock.ExpectSetNX("rentflow:session:s-1", data, 30*time.Minute).SetErr(errors.New("connection refused"))
	err = repo.Create(ctx, sess)
	assert.ErrorContains(t, err, "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Get(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	repo := NewSessionRepository(db, 0)

	data, err := json.Marshal(testSession())
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectGet("rentflow:session:s-1").SetVal(string(data))
		got, err := repo.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", got.Token)
		assert.Equal(t, domain.Cents(10000), got.Product.Price[domain.RentalUnitDay])
		assert.Equal(t, domain.BookingStateSelectingDates, got.Workflow.State)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectGet("rentflow:session:gone").RedisNil()
		_, err := repo.Get(ctx, "gone")
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})

	t.Run("Corrupt value", func(t *testing.T) {
		mock.ExpectGet("rentflow:session:bad").SetVal("{")
		_, err := repo.Get(ctx, "bad")
		assert.ErrorContains(t, err, "failed to decode booking session")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	repo := NewSessionRepository(db, time.Hour)

	sess := testSession()
	data, err := json.Marshal(sess)
	require.NoError(t, err)

	mock.ExpectSetXX("rentflow:session:s-1", data, time.Hour).SetVal(true)
	require.NoError(t, repo.Save(ctx, sess))

	mock.ExpectSetXX("rentflow:session:s-1", data, time.Hour).SetVal(false)
	assert.ErrorIs(t, repo.Save(ctx, sess), repository.ErrSessionNotFound)

	mock.ExpectDel("rentflow:session:s-1").SetVal(1)
	require.NoError(t, repo.Delete(ctx, "s-1"))

	mock.ExpectDel("rentflow:session:s-1").SetVal(0)
	assert.ErrorIs(t, repo.Delete(ctx, "s-1"), repository.ErrSessionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
