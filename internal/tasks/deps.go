// Package tasks implements the scheduled maintenance tasks of the API and
// bot processes.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/friendbook/internal/database"
)

// SessionSweeper purges idle conversation sessions.
type SessionSweeper interface {
	Sweep(now time.Time) int
}

// TaskDeps contains the dependencies of scheduled tasks. A process leaves
// the fields it does not own nil, and the tasks needing them are not registered.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Sessions SessionSweeper
}
