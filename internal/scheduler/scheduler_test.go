package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

type blockingJob struct {
	once    sync.Once
	started chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.once.Do(func() { close(j.started) })
	<-ctx.Done()
	return ctx.Err()
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	defer s.Stop()

	err := s.AddJob("every day", &countingJob{})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	defer s.Stop()

	job := &countingJob{err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(job), "boom")
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 10ms", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := New(zap.NewNop(), time.Minute)
	job := &blockingJob{started: make(chan struct{})}
	require.NoError(t, s.AddJob("@every 10ms", job))

	s.Start()
	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}
	s.Stop()
}
