//go:build linux || darwin || freebsd

package poll

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/utils/errs"
)

type nopCallback struct{}

func (nopCallback) Callback(fd int, events uint32) error { return nil }

func TestPollerRunsTasksInOrder(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	var order []string
	done := make(chan error, 1)
	go func() { done <- p.Start(nopCallback{}) }()

	record := func(name string) iface.PollTaskFunc {
		return func(arg iface.PollTaskArg) error {
			order = append(order, name)
			return nil
		}
	}
	// queued before the loop runs them, prior tasks go first
	require.NoError(t, p.AddTask(record("normal"), nil))
	require.NoError(t, p.AddPriorTask(record("prior"), nil))
	require.NoError(t, p.AddTask(func(arg iface.PollTaskArg) error {
		return errs.ErrEngineShutdown
	}, nil))

	select {
	case err = <-done:
		assert.ErrorIs(t, err, errs.ErrEngineShutdown)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	require.Len(t, order, 2)
	assert.Contains(t, order, "normal")
	assert.Contains(t, order, "prior")
}

func TestPollerTaskErrorKeepsLoop(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	var ran int32
	done := make(chan error, 1)
	go func() { done <- p.Start(nopCallback{}) }()

	require.NoError(t, p.AddTask(func(iface.PollTaskArg) error {
		atomic.AddInt32(&ran, 1)
		return assert.AnError
	}, nil))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&ran) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.AddPriorTask(func(iface.PollTaskArg) error { return errs.ErrEngineShutdown }, nil))
	assert.ErrorIs(t, <-done, errs.ErrEngineShutdown)
}

func TestPollerSubmitUsesPool(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	p, err := New(pool)
	require.NoError(t, err)
	defer p.Close()

	finished := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(finished) }))
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("work was not run")
	}
}
