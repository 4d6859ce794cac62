package service

import (
	"context"
	"errors"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/repository"
)

type HistoryService struct {
	outcomes repository.OutcomeRepo
}

func NewHistoryService(outcomes repository.OutcomeRepo) *HistoryService {
	return &HistoryService{outcomes: outcomes}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// Get returns one outcome by id, nil when unknown.
func (s *HistoryService) Get(ctx context.Context, id string) (*updater.UpdateOutcome, error) {
	return s.outcomes.Get(ctx, id)
}

// List returns outcomes matching the filter, newest first.
func (s *HistoryService) List(ctx context.Context, f HistoryFilter) ([]updater.UpdateOutcome, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.outcomes.List(ctx, repository.OutcomeFilter{
		From:    from,
		To:      to,
		Item:    f.Item,
		Success: f.Success,
	})
}
