package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowJob blocks inside Run until release is closed.
type slowJob struct {
	name    string
	starts  atomic.Int32
	release chan struct{}
}

func (j *slowJob) Name() string        { return j.name }
func (j *slowJob) Description() string { return "blocks until released" }

func (j *slowJob) Run(ctx context.Context) error {
	j.starts.Add(1)
	<-j.release
	return nil
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s := New(Config{Timezone: time.UTC})
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

func TestScheduler_SlowJobIsNotPickedUpTwice(t *testing.T) {
	s := newTestScheduler(t)
	job := &slowJob{name: "slow", release: make(chan struct{})}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	// Make the job due immediately.
	s.mu.Lock()
	s.jobs["slow"].nextRun = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	// First tick dispatches the job; it stays blocked in Run.
	s.checkAndRunJobs()

	// The schedule must already be advanced while the job is still running,
	// so further ticks see nothing due.
	s.mu.RLock()
	nextRun := s.jobs["slow"].nextRun
	runCount := s.jobs["slow"].runCount
	s.mu.RUnlock()
	assert.True(t, nextRun.After(time.Now()), "next run should be in the future")
	assert.Equal(t, int64(1), runCount)

	s.checkAndRunJobs()
	s.checkAndRunJobs()

	close(job.release)
	s.wg.Wait()

	assert.Equal(t, int32(1), job.starts.Load(), "the blocked job must run exactly once")
}

func TestScheduler_DisabledJobIsSkipped(t *testing.T) {
	s := newTestScheduler(t)
	job := &slowJob{name: "skipped", release: make(chan struct{})}
	close(job.release)

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	s.mu.Lock()
	s.jobs["skipped"].nextRun = time.Now().Add(-time.Minute)
	s.jobs["skipped"].enabled = false
	s.mu.Unlock()

	s.checkAndRunJobs()
	s.wg.Wait()

	assert.Zero(t, job.starts.Load())
}
