package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestSchedulerRunsJobOnInterval(t *testing.T) {
	s := New(nil)
	ctx := s.Start(context.Background())
	defer s.Stop()

	job := &countingJob{name: "tick"}
	require.NoError(t, s.Every(ctx, 10*time.Millisecond, job))

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerJobErrorDoesNotStopTicking(t *testing.T) {
	s := New(nil)
	ctx := s.Start(context.Background())
	defer s.Stop()

	job := &countingJob{name: "flaky", err: errors.New("boom")}
	require.NoError(t, s.Every(ctx, 10*time.Millisecond, job))

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopHaltsJobs(t *testing.T) {
	s := New(nil)
	ctx := s.Start(context.Background())

	job := &countingJob{name: "tick"}
	require.NoError(t, s.Every(ctx, 5*time.Millisecond, job))

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, time.Second, time.Millisecond)

	s.Stop()
	after := job.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, job.runs.Load(), "no runs after stop")

	assert.ErrorIs(t, s.Every(ctx, time.Millisecond, job), ErrSchedulerStopped)
	s.Stop()
}
