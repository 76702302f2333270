package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func newTestDispatcher(t *testing.T, retries int) *Dispatcher {
	t.Helper()
	d := NewDispatcher(Options{
		Shards:       2,
		QueueSize:    16,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
		MaxInterval:  2 * time.Millisecond,
	})
	t.Cleanup(d.Close)
	return d
}

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	d := newTestDispatcher(t, 0)
	ctx := context.Background()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, d.Enqueue(ctx, 42, "send", func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}))
	}
	require.NoError(t, d.Do(ctx, 42, "barrier", func() error { return nil }))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := newTestDispatcher(t, 3)
	var calls atomic.Int32

	err := d.Do(context.Background(), 1, "send", func() error {
		if calls.Add(1) < 3 {
			return timeoutErr{}
		}
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherDoesNotRetryPermanentErrors(t *testing.T) {
	d := newTestDispatcher(t, 3)
	var calls atomic.Int32
	boom := errors.New("bad request (400)")

	err := d.Do(context.Background(), -100, "send", func() error {
		calls.Add(1)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, d.ErrorCount())
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	d := newTestDispatcher(t, 2)
	var calls atomic.Int32

	err := d.Do(context.Background(), 5, "send", func() error {
		calls.Add(1)
		return timeoutErr{}
	})
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	err := d.Enqueue(context.Background(), 1, "send", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestClassifyErrorAndRedaction(t *testing.T) {
	assert.Equal(t, "http_4xx", classifyError(errors.New("telegram: chat not found (400)")))
	assert.Equal(t, "timeout", classifyError(context.DeadlineExceeded))
	assert.Equal(t, "post bot<redacted>/sendMessage",
		sanitizeErrorMessage(errors.New("post bot123:ABC-def_9/sendMessage")))
}
