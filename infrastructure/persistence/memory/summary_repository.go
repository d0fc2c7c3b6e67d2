package memory

import (
	"context"
	"sync"

	"goodnight/domain/entities"
)

// SummaryRepository is a mutex-guarded in-memory daily summary store,
// unique on (user, date)
type SummaryRepository struct {
	mu        sync.RWMutex
	summaries map[string]*entities.DailySleepSummary
}

// NewSummaryRepository creates an in-memory summary repository
func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{
		summaries: make(map[string]*entities.DailySleepSummary),
	}
}

// Upsert implements ports.SummaryRepository
func (r *SummaryRepository) Upsert(ctx context.Context, summary *entities.DailySleepSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[summary.UserID+"|"+summary.Date] = summary
	return nil
}

// GetByUserAndDate implements ports.SummaryRepository
func (r *SummaryRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*entities.DailySleepSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summaries[userID+"|"+date], nil
}
