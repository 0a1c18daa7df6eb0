package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionSweepJobName is the name of the expired-session cleanup job.
const SessionSweepJobName = "session_sweep"

// sessionSweepTimeout bounds a single sweep run.
const sessionSweepTimeout = 30 * time.Second

// SessionCleaner removes expired sessions. Satisfied by
// repository.SessionRepository without the job importing it directly.
type SessionCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweepJob periodically deletes sessions past their expiry so the
// sessions table does not grow without bound. Expired tokens are already
// rejected at resolve time, so the sweep is purely housekeeping.
type SessionSweepJob struct {
	sessions SessionCleaner
	logger   *zap.Logger
}

// NewSessionSweepJob creates a new expired-session cleanup job.
func NewSessionSweepJob(sessions SessionCleaner, logger *zap.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		sessions: sessions,
		logger:   logger,
	}
}

// Run executes one sweep. It is called by the scheduler according to the
// configured cron expression.
func (j *SessionSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sessionSweepTimeout)
	defer cancel()

	start := time.Now()
	deleted, err := j.sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("session sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if deleted > 0 {
		j.logger.Info("session sweep completed",
			zap.Int64("sessions_deleted", deleted),
			zap.Duration("duration", time.Since(start)))
	}
}
