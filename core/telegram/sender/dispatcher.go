// Package sender delivers outbound Telegram calls off the handler goroutine.
// Jobs for one chat run in submission order; different chats run in parallel.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/metrics"
	"github.com/m3rciful/eventbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the shard queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	Shards       int
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	MaxInterval  time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
	// EnqueueTimeout bounds how long Enqueue waits for shard capacity.
	EnqueueTimeout time.Duration
}

type job struct {
	ctx    context.Context
	action string
	chatID int64
	run    func() error
	done   chan error
}

// Dispatcher executes outbound Telegram calls on chat-keyed shards with retries.
type Dispatcher struct {
	opts   Options
	queues []chan job
	stop   chan struct{}
	closed atomic.Bool
	once   sync.Once
	wg     sync.WaitGroup
	errs   atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.Shards <= 0 {
		opts.Shards = 8
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 4 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = 2 * time.Second
	}

	d := &Dispatcher{
		opts:   opts,
		queues: make([]chan job, opts.Shards),
		stop:   make(chan struct{}),
	}
	for i := range d.queues {
		ch := make(chan job, opts.QueueSize)
		d.queues[i] = ch
		d.wg.Add(1)
		go d.worker(ch)
	}
	return d
}

// Enqueue schedules run on the shard owning chatID and returns without waiting.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, chatID int64, action string, run func() error) error {
	return d.submit(ctx, job{ctx: ctx, action: action, chatID: chatID, run: run})
}

// Do schedules run like Enqueue and waits for its final result. Messages sent
// through Do keep their order relative to earlier Enqueue calls for the chat.
func (d *Dispatcher) Do(ctx context.Context, chatID int64, action string, run func() error) error {
	done := make(chan error, 1)
	if err := d.submit(ctx, job{ctx: ctx, action: action, chatID: chatID, run: run, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) submit(ctx context.Context, j job) error {
	if j.run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
		j.ctx = ctx
	}
	if d.closed.Load() {
		return ErrQueueClosed
	}

	timer := time.NewTimer(d.opts.EnqueueTimeout)
	defer timer.Stop()

	select {
	case d.queues[d.shardFor(j.chatID)] <- j:
		return nil
	case <-d.stop:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shardFor(chatID int64) int {
	if chatID < 0 {
		chatID = -chatID
	}
	return int(chatID % int64(len(d.queues)))
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker(ch chan job) {
	defer d.wg.Done()
	for {
		select {
		case j := <-ch:
			d.handleJob(j)
		case <-d.stop:
			for {
				select {
				case j := <-ch:
					d.handleJob(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = d.opts.RetryBackoff
	exp.MaxInterval = d.opts.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(d.opts.MaxRetries)), ctx)
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	deadlineCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempt := 0
	operation := func() error {
		attempt++
		err := safeRun(j.run)
		if err != nil && !netutil.ShouldRetry(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(sendLogAttrs(j),
				slog.Int("attempts", attempt),
				slog.Duration("delay", delay),
				slog.String("err", sanitizeErrorMessage(err)),
			)...,
		)
	}

	err := backoff.RetryNotify(operation, d.newBackOff(deadlineCtx), notify)
	if err != nil {
		d.errs.Add(1)
		metrics.SendFailures.WithLabelValues(classifyError(err)).Inc()
		logSendFailure(ctx, j, err, attempt, logger.Took(start))
	} else {
		logSendSuccess(ctx, j, attempt, logger.Took(start))
	}
	if j.done != nil {
		j.done <- err
	}
}

func safeRun(run func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = backoff.Permanent(errors.New("telegram sender: job panicked"))
		}
	}()
	return run()
}

func sendLogAttrs(j job) []slog.Attr {
	return []slog.Attr{
		slog.String("action", j.action),
		slog.Int64("chat_id", j.chatID),
	}
}

func logSendSuccess(ctx context.Context, j job, attempt int, elapsed time.Duration) {
	attrs := sendLogAttrs(j)
	if attempt > 1 {
		attrs = append(attrs, slog.Int("attempts", attempt))
	}
	attrs = append(attrs, slog.Duration("duration", elapsed))
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
}

func logSendFailure(ctx context.Context, j job, err error, attempts int, elapsed time.Duration) {
	attrs := append(sendLogAttrs(j),
		slog.String("status", "fail"),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", classifyError(err)),
		slog.Int("attempts", attempts),
		slog.Duration("duration", elapsed),
	)
	logger.Error(ctx, "tg.sender", "send.fail", attrs...)
}
