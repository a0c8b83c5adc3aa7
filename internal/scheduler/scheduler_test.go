package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// signalJob counts runs and signals the first one.
type signalJob struct {
	name string
	err  error

	mu   sync.Mutex
	runs int
	ran  chan struct{}
}

func newSignalJob(name string) *signalJob {
	return &signalJob{name: name, ran: make(chan struct{}, 1)}
}

func (j *signalJob) Name() string { return j.name }

func (j *signalJob) Run() error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()

	select {
	case j.ran <- struct{}{}:
	default:
	}
	return j.err
}

func (j *signalJob) total() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := New(testLogger())

	err := s.AddJob("not a schedule", newSignalJob("bad"))
	assert.Error(t, err)
}

func TestAddJobAcceptsSecondsField(t *testing.T) {
	s := New(testLogger())

	assert.NoError(t, s.AddJob("0 0 * * * *", newSignalJob("hourly")))
	assert.NoError(t, s.AddJob("@every 6h", newSignalJob("periodic")))
}

func TestSchedulerRunsJobOnSchedule(t *testing.T) {
	s := New(testLogger())
	job := newSignalJob("ticker")

	require.NoError(t, s.AddJob("@every 10ms", job))

	s.Start()
	defer s.Stop()

	select {
	case <-job.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestSchedulerKeepsRunningAfterJobFailure(t *testing.T) {
	s := New(testLogger())
	failing := newSignalJob("failing")
	failing.err = errors.New("boom")

	require.NoError(t, s.AddJob("@every 10ms", failing))

	s.Start()
	defer s.Stop()

	select {
	case <-failing.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}

	// A second run proves the schedule survived the failure.
	select {
	case <-failing.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run again after failing")
	}
}

func TestStopWaitsForCompletion(t *testing.T) {
	s := New(testLogger())
	s.Start()
	s.Stop()
}

func TestRunNow(t *testing.T) {
	s := New(testLogger())
	job := newSignalJob("manual")

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.total())
}

func TestRunNowPropagatesError(t *testing.T) {
	s := New(testLogger())
	job := newSignalJob("manual")
	job.err = errors.New("boom")

	err := s.RunNow(job)
	assert.ErrorIs(t, err, job.err)
}
