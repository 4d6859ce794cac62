package service

import (
	"context"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/logger"
	"openhab_updater/internal/notify"
	"openhab_updater/internal/openhab"
	"openhab_updater/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// ConnectionProvider resolves a live connection to the openHAB server. The
// provider initializes asynchronously; WaitForInitialization suspends until
// the first reachability probe completed. UsableConnection returns nil while
// the server cannot be reached.
type ConnectionProvider interface {
	WaitForInitialization(ctx context.Context) error
	UsableConnection() *openhab.Connection
}

// Updater executes one update attempt and classifies the result.
// A retryable connection failure is signaled with ErrAwaitingConnection;
// everything else is a terminal UpdateOutcome.
type Updater interface {
	Execute(ctx context.Context, req updater.UpdateRequest, attempt int) (updater.UpdateOutcome, error)
}

// Dispatcher owns the work queue and the retry loop around the Updater.
// Stop via context cancellation in main() for graceful shutdown.
type Dispatcher interface {
	Run(ctx context.Context)
	Enqueue(ctx context.Context, req updater.UpdateRequest) (string, error)
}

// History exposes persisted outcomes with filtering access.
type History interface {
	Get(ctx context.Context, id string) (*updater.UpdateOutcome, error)
	List(ctx context.Context, f HistoryFilter) ([]updater.UpdateOutcome, error)
}

// HistoryFilter narrows outcome history queries.
type HistoryFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Item    string    // empty means all items
	Success *bool     // nil means both successes and failures
}

// DispatchConfig tunes the dispatcher's worker pool and retry backoff.
type DispatchConfig struct {
	Workers     int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Updater
	Dispatcher
	History
	Authorization
}

// NewService wires repositories, the connection provider and the notifier into
// concrete services.
func NewService(
	repos *repository.Repository,
	provider ConnectionProvider,
	notifier notify.Notifier,
	cfg DispatchConfig,
	signingKey string,
	log *logger.Logger,
) *Service {
	upd := NewUpdaterService(provider, notifier, log)
	return &Service{
		Updater:       upd,
		Dispatcher:    NewDispatcherService(upd, repos.Queue, repos.Outcomes, cfg, log),
		History:       NewHistoryService(repos.Outcomes),
		Authorization: NewAuthService(repos.Auth, signingKey),
	}
}
