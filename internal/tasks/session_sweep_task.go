package tasks

import (
	"context"
	"time"
)

// newSessionSweepTask drops conversation sessions that have been idle past their timeout.
func newSessionSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_sweep")

	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		removed := deps.Sessions.Sweep(time.Now())
		if removed > 0 {
			log.InfoContext(ctx, "Expired idle sessions", "count", removed)
		} else {
			log.DebugContext(ctx, "No idle sessions to expire")
		}
		return nil
	}
}
