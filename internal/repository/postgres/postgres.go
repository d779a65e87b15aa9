package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rentflow/internal/logger"
	"rentflow/internal/repository"

	_ "github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS booking_drafts (
	order_id   TEXT PRIMARY KEY,
	session_id TEXT NOT NULL DEFAULT '',
	user_id    TEXT NOT NULL DEFAULT '',
	product_id TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	created_on TIMESTAMPTZ NOT NULL,
	updated_on TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS booking_drafts_status_created_idx ON booking_drafts (status, created_on);`

type Store struct {
	db *sql.DB
	repository.DraftRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:              db,
		DraftRepository: NewDraftRepository(db),
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the draft journal table when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	logger.DatabaseCall("CREATE", "booking_drafts")
	_, err := s.db.ExecContext(ctx, schema)
	logger.DatabaseResult("CREATE", 0, err)
	if err != nil {
		return fmt.Errorf("failed to create booking_drafts: %w", err)
	}
	return nil
}
