package service

import (
	"context"
	"sync"
	"testing"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/repository"
)

type filterRecordingRepo struct {
	mu         sync.Mutex
	lastFilter repository.OutcomeFilter
	resp       []updater.UpdateOutcome
	getResp    *updater.UpdateOutcome
}

func (f *filterRecordingRepo) Save(ctx context.Context, o updater.UpdateOutcome) error { return nil }

func (f *filterRecordingRepo) Get(ctx context.Context, id string) (*updater.UpdateOutcome, error) {
	return f.getResp, nil
}

func (f *filterRecordingRepo) List(ctx context.Context, filter repository.OutcomeFilter) ([]updater.UpdateOutcome, error) {
	f.mu.Lock()
	f.lastFilter = filter
	f.mu.Unlock()
	return f.resp, nil
}

func TestHistory_ListRejectsInvertedRange(t *testing.T) {
	s := NewHistoryService(&filterRecordingRepo{})
	_, err := s.List(context.Background(), HistoryFilter{
		From: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatalf("expected range error")
	}
}

func TestHistory_ListNormalizesToUTCAndPassesFilter(t *testing.T) {
	repo := &filterRecordingRepo{resp: []updater.UpdateOutcome{{ID: "a"}}}
	s := NewHistoryService(repo)

	loc := time.FixedZone("UTC+3", 3*3600)
	from := time.Date(2026, 8, 1, 12, 0, 0, 0, loc)
	success := true

	out, err := s.List(context.Background(), HistoryFilter{From: from, Item: "Light", Success: &success})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected passthrough of repo result")
	}
	if repo.lastFilter.From.Location() != time.UTC {
		t.Errorf("From not normalized to UTC")
	}
	if repo.lastFilter.Item != "Light" {
		t.Errorf("Item filter lost")
	}
	if repo.lastFilter.Success == nil || !*repo.lastFilter.Success {
		t.Errorf("Success filter lost")
	}
}

func TestHistory_GetPassesThrough(t *testing.T) {
	want := &updater.UpdateOutcome{ID: "x", HTTPStatus: 200, HasConnection: true}
	s := NewHistoryService(&filterRecordingRepo{getResp: want})
	got, err := s.Get(context.Background(), "x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ID != "x" {
		t.Fatalf("got %+v", got)
	}
}
