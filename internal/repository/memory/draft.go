package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/repository"
)

type draftRepository struct {
	mu     sync.RWMutex
	now    func() time.Time
	drafts map[string]domain.DraftRecord
}

// NewDraftRepository is the journal used when no database is configured.
func NewDraftRepository() repository.DraftRepository {
	return &draftRepository{
		now:    time.Now,
		drafts: make(map[string]domain.DraftRecord),
	}
}

func (r *draftRepository) Record(ctx context.Context, draft *domain.DraftRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *draft
	if d.CreatedOn.IsZero() {
		d.CreatedOn = r.now().UTC()
	}
	if existing, ok := r.drafts[d.OrderID]; ok {
		d.CreatedOn = existing.CreatedOn
	}
	d.UpdatedOn = r.now().UTC()
	r.drafts[d.OrderID] = d
	return nil
}

func (r *draftRepository) UpdateStatus(ctx context.Context, orderID string, status domain.DraftStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[orderID]
	if !ok {
		return repository.ErrDraftNotFound
	}
	d.Status = status
	d.UpdatedOn = r.now().UTC()
	r.drafts[orderID] = d
	return nil
}

func (r *draftRepository) ListSweepable(ctx context.Context, openBefore time.Time, limit int) ([]domain.DraftRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.DraftRecord
	for _, d := range r.drafts {
		switch {
		case d.Status == domain.DraftStatusOrphaned:
		case d.Status == domain.DraftStatusOpen && d.CreatedOn.Before(openBefore):
		default:
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.Before(out[j].CreatedOn) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
