package scheduler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/database"
)

func TestCheckWALCheckpointsJobName(t *testing.T) {
	job := NewCheckWALCheckpointsJob(nil, testLogger())
	assert.Equal(t, "check_wal_checkpoints", job.Name())
}

func TestCheckWALCheckpointsJobRun(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	job := NewCheckWALCheckpointsJob(db, testLogger())
	assert.NoError(t, job.Run())
}

func TestCheckWALCheckpointsJobNilDatabase(t *testing.T) {
	job := NewCheckWALCheckpointsJob(nil, testLogger())
	assert.NoError(t, job.Run())
}
