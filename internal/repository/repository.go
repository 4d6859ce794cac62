package repository

import (
	"context"
	"database/sql"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*updater.User, error)
}

// QueueRepo persists requests awaiting dispatch, so queued work survives a
// process restart.
type QueueRepo interface {
	Enqueue(ctx context.Context, p updater.PendingUpdate) error
	Delete(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]updater.PendingUpdate, error)
}

// OutcomeFilter narrows outcome listings. Zero times mean no bound; empty item
// means all items; nil Success means both successes and failures.
type OutcomeFilter struct {
	From    time.Time
	To      time.Time
	Item    string
	Success *bool
}

type OutcomeRepo interface {
	Save(ctx context.Context, o updater.UpdateOutcome) error
	Get(ctx context.Context, id string) (*updater.UpdateOutcome, error)
	List(ctx context.Context, f OutcomeFilter) ([]updater.UpdateOutcome, error)
}

type Repository struct {
	Queue    QueueRepo
	Outcomes OutcomeRepo
	Auth     Authorization
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		Queue:    NewQueueSQLite(database),
		Outcomes: NewOutcomeSQLite(database),
		Auth:     NewUserRepository(database),
	}
}

// InitDB opens the SQLite file and ensures the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
