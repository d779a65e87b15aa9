package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
)

type draftRepository struct {
	db *sql.DB
}

func NewDraftRepository(db *sql.DB) repository.DraftRepository {
	return &draftRepository{db: db}
}

// Record upserts by order id. created_on is kept from the first insert.
func (r *draftRepository) Record(ctx context.Context, d *domain.DraftRecord) error {
	logger.EnterMethod("draftRepository.Record", "orderID", d.OrderID, "status", d.Status)

	createdOn := d.CreatedOn
	if createdOn.IsZero() {
		createdOn = time.Now().UTC()
	}
	query := `INSERT INTO booking_drafts (order_id, session_id, user_id, product_id, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status, updated_on = EXCLUDED.updated_on`
	logger.DatabaseCall("UPSERT", "booking_drafts", "orderID", d.OrderID)

	result, err := r.db.ExecContext(ctx, query, d.OrderID, d.SessionID, d.UserID, d.ProductID, string(d.Status), createdOn, time.Now().UTC())
	var affected int64
	if err == nil {
		affected, _ = result.RowsAffected()
	}
	logger.DatabaseResult("UPSERT", affected, err, "orderID", d.OrderID)

	if err != nil {
		logger.ExitMethodWithError("draftRepository.Record", err, "orderID", d.OrderID)
		return err
	}
	logger.ExitMethod("draftRepository.Record", "orderID", d.OrderID)
	return nil
}

func (r *draftRepository) UpdateStatus(ctx context.Context, orderID string, status domain.DraftStatus) error {
	query := `UPDATE booking_drafts SET status = $1, updated_on = $2 WHERE order_id = $3`
	logger.DatabaseCall("UPDATE", "booking_drafts", "orderID", orderID, "status", status)
	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), orderID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "orderID", orderID)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "orderID", orderID)
	if rows == 0 {
		return repository.ErrDraftNotFound
	}
	return nil
}

// ListSweepable returns ORPHANED drafts and OPEN drafts created before
// openBefore, oldest first.
func (r *draftRepository) ListSweepable(ctx context.Context, openBefore time.Time, limit int) ([]domain.DraftRecord, error) {
	query := `SELECT order_id, session_id, user_id, product_id, status, created_on, updated_on
	          FROM booking_drafts
	          WHERE status = $1 OR (status = $2 AND created_on < $3)
	          ORDER BY created_on ASC LIMIT $4`
	logger.DatabaseCall("SELECT", "booking_drafts", "openBefore", openBefore, "limit", limit)
	rows, err := r.db.QueryContext(ctx, query, string(domain.DraftStatusOrphaned), string(domain.DraftStatusOpen), openBefore, limit)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var drafts []domain.DraftRecord
	for rows.Next() {
		var d domain.DraftRecord
		var status string
		if err := rows.Scan(&d.OrderID, &d.SessionID, &d.UserID, &d.ProductID, &status, &d.CreatedOn, &d.UpdatedOn); err != nil {
			return nil, err
		}
		d.Status = domain.DraftStatus(status)
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(drafts)), nil)
	return drafts, nil
}
