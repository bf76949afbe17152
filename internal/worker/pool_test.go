package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/timestrainer/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsAndDrainsOnStop(t *testing.T) {
	pool := worker.NewPool(2, 100)
	pool.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 50; i++ {
		err := pool.Submit(funcJob{name: "count", fn: func(context.Context) error {
			time.Sleep(time.Millisecond)
			ran.Add(1)
			return nil
		}})
		require.NoError(t, err)
	}
	pool.Stop()

	assert.Equal(t, int32(50), ran.Load())
	assert.Zero(t, pool.QueueSize())
	assert.Equal(t, worker.Stats{Succeeded: 50}, pool.Stats())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrStopped)
}

func TestPool_FailuresAndPanicsDoNotKillWorkers(t *testing.T) {
	pool := worker.NewPool(1, 10)
	pool.Start(context.Background())

	var ran atomic.Int32
	require.NoError(t, pool.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, pool.Submit(funcJob{name: "panic", fn: func(context.Context) error { panic("boom") }}))
	require.NoError(t, pool.Submit(funcJob{name: "ok", fn: func(context.Context) error {
		ran.Add(1)
		return nil
	}}))
	pool.Stop()

	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, worker.Stats{Succeeded: 1, Failed: 2}, pool.Stats())
}

func TestPool_JobContextCarriesLogger(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())

	got := make(chan error, 1)
	require.NoError(t, pool.Submit(funcJob{name: "ctx", fn: func(ctx context.Context) error {
		got <- ctx.Err()
		return nil
	}}))
	pool.Stop()

	assert.NoError(t, <-got, "jobs run before the pool context is cancelled")
}
