package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/database"
)

// CheckWALCheckpointsJob passively checkpoints the cache database and
// warns when the WAL file is growing faster than checkpoints drain it.
type CheckWALCheckpointsJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewCheckWALCheckpointsJob creates a new CheckWALCheckpointsJob
func NewCheckWALCheckpointsJob(db *database.DB, log zerolog.Logger) *CheckWALCheckpointsJob {
	return &CheckWALCheckpointsJob{
		db:  db,
		log: log.With().Str("job", "check_wal_checkpoints").Logger(),
	}
}

// Name returns the job name
func (j *CheckWALCheckpointsJob) Name() string {
	return "check_wal_checkpoints"
}

// Run executes the WAL checkpoint check
func (j *CheckWALCheckpointsJob) Run() error {
	if j.db == nil {
		j.log.Debug().Msg("No database configured, skipping")
		return nil
	}

	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, log, checkpointed int
	err := j.db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &log, &checkpointed)
	if err != nil {
		j.log.Warn().
			Err(err).
			Str("database", j.db.Name()).
			Msg("Failed to check WAL checkpoint")
		return err
	}

	// Log if WAL is growing large
	if log > 1000 {
		j.log.Warn().
			Str("database", j.db.Name()).
			Int("wal_frames", log).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Str("database", j.db.Name()).
			Int("wal_frames", log).
			Msg("WAL checkpoint status OK")
	}

	return nil
}
