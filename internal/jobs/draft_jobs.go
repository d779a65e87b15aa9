package jobs

import (
	"context"
	"errors"
	"fmt"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
)

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Found      int
	Cancelled  int
	Reconciled int // no longer DRAFT upstream, journal caught up
	Failed     int
}

// SweepOrphanedDrafts cancels DRAFT orders upstream whose booking session
// was cancelled or never confirmed.
func (jr *JobRunner) SweepOrphanedDrafts() {
	jr.runWithRecovery("SweepOrphanedDrafts", func() {
		result, err := jr.sweepDrafts(context.Background())
		if err != nil {
			logger.Error("Failed to sweep abandoned drafts", "error", err)
			return
		}
		logger.Info("Swept abandoned drafts",
			"found", result.Found,
			"cancelled", result.Cancelled,
			"reconciled", result.Reconciled,
			"failed", result.Failed)
	})
}

func (jr *JobRunner) sweepDrafts(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	token := jr.config.Marketplace.ServiceToken
	if token == "" {
		logger.Warn("No service token configured, skipping draft sweep")
		return result, nil
	}

	cutoff := jr.now().UTC().Add(-jr.config.AbandonAfter())
	drafts, err := jr.drafts.ListSweepable(ctx, cutoff, jr.config.Drafts.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list drafts: %w", err)
	}
	result.Found = len(drafts)

	for _, d := range drafts {
		switch outcome, err := jr.sweepDraft(ctx, token, d); {
		case err != nil:
			// Left as is; the next run retries.
			logger.Error("Failed to sweep draft order",
				"order_id", d.OrderID,
				"session_id", d.SessionID,
				"error", err)
			result.Failed++
		case outcome == domain.DraftStatusCancelled:
			result.Cancelled++
		default:
			result.Reconciled++
		}
	}
	return result, nil
}

// sweepDraft cancels one order, but only while the marketplace still has it
// as DRAFT. An order that moved on, for instance a confirmation whose journal
// write was lost, only has its journal row updated.
func (jr *JobRunner) sweepDraft(ctx context.Context, token string, d domain.DraftRecord) (domain.DraftStatus, error) {
	status := domain.DraftStatusCancelled

	order, err := jr.orders.GetOrder(ctx, token, d.OrderID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return "", fmt.Errorf("failed to fetch order: %w", err)
	case order.OrderStatus != domain.OrderStatusDraft:
		status = domain.DraftStatusFor(order.OrderStatus)
		logger.Warn("Swept draft is no longer a draft upstream",
			"order_id", d.OrderID,
			"journal_status", d.Status,
			"order_status", order.OrderStatus)
	default:
		_, err := jr.orders.UpdateStatus(ctx, token, d.OrderID, domain.OrderStatusCancelled)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("failed to cancel order: %w", err)
		}
	}

	if err := jr.drafts.UpdateStatus(ctx, d.OrderID, status); err != nil {
		return "", fmt.Errorf("failed to update journal: %w", err)
	}
	return status, nil
}
