package tasks

import (
	"context"

	"github.com/edgard/friendbook/internal/config"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the tasks that can run with the given deps, keyed
// by the name used in the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	if deps.Store != nil {
		tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)
	}
	if deps.Sessions != nil {
		tasks[config.TaskSessionSweep] = newSessionSweepTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
