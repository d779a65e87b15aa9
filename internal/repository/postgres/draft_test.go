package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRepository_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDraftRepository(db)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO booking_drafts").
			WithArgs("o-1", "s-1", "u-1", "p-1", "OPEN", created, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Record(ctx, &domain.DraftRecord{
			OrderID:   "o-1",
			SessionID: "s-1",
			UserID:    "u-1",
			ProductID: "p-1",
			Status:    domain.DraftStatusOpen,
			CreatedOn: created,
		})
		assert.NoError(t, err)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO booking_drafts").
			WillReturnError(errors.New("connection reset"))

		err := repo.Record(ctx, &domain.DraftRecord{OrderID: "o-2", Status: domain.DraftStatusOrphaned})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDraftRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE booking_drafts SET status").
		WithArgs("CONFIRMED", sqlmock.AnyArg(), "o-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(ctx, "o-1", domain.DraftStatusConfirmed))

	mock.ExpectExec("UPDATE booking_drafts SET status").
		WithArgs("ORPHANED", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.DraftStatusOrphaned), repository.ErrDraftNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepository_ListSweepable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDraftRepository(db)
	cutoff := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"order_id", "session_id", "user_id", "product_id", "status", "created_on", "updated_on"}).
		AddRow("o-1", "s-1", "u-1", "p-1", "OPEN", created, created).
		AddRow("o-2", "s-2", "u-2", "p-1", "ORPHANED", created.Add(time.Hour), created.Add(time.Hour))
	mock.ExpectQuery("SELECT order_id, session_id, user_id, product_id, status, created_on, updated_on FROM booking_drafts").
		WithArgs("ORPHANED", "OPEN", cutoff, 50).
		WillReturnRows(rows)

	drafts, err := repo.ListSweepable(context.Background(), cutoff, 50)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, domain.DraftStatusOpen, drafts[0].Status)
	assert.Equal(t, "o-2", drafts[1].OrderID)
	assert.Equal(t, domain.DraftStatusOrphaned, drafts[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS booking_drafts").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewStore(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
