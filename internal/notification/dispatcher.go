package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/observability"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	ErrQueueFull        = errors.New("notification queue full")
	ErrDispatcherClosed = errors.New("notification dispatcher closed")
)

type DispatcherOptions struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	RetryBase  time.Duration
}

type job struct {
	msg         Message
	spanContext trace.SpanContext
	enqueuedAt  time.Time
}

// Dispatcher renders on the caller's goroutine and delivers from a bounded
// in-memory queue, so request latency never includes SMTP round trips.
type Dispatcher struct {
	renderer *Renderer
	mailer   Mailer
	logger   *slog.Logger
	opts     DispatcherOptions

	mu     sync.RWMutex
	closed bool
	queue  chan job

	runCtx context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewDispatcher(renderer *Renderer, mailer Mailer, logger *slog.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	runCtx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		renderer: renderer,
		mailer:   mailer,
		logger:   logger,
		opts:     opts,
		queue:    make(chan job, opts.QueueSize),
		runCtx:   runCtx,
		cancel:   cancel,
		group:    &errgroup.Group{},
	}
	for i := 0; i < opts.Workers; i++ {
		d.group.Go(d.work)
	}
	return d
}

func (d *Dispatcher) SendVerificationEmail(ctx context.Context, email, code string) error {
	msg, err := d.renderer.Verification(email, code)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, msg)
}

func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, email, rawToken string, details ResetDetails) error {
	msg, err := d.renderer.PasswordReset(email, rawToken, details)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, msg)
}

func (d *Dispatcher) enqueue(ctx context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		observability.RecordNotificationDispatch(ctx, msg.Kind, "closed")
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- job{msg: msg, spanContext: trace.SpanContextFromContext(ctx), enqueuedAt: time.Now()}:
		observability.RecordNotificationDispatch(ctx, msg.Kind, "enqueued")
		return nil
	default:
		observability.RecordNotificationDispatch(ctx, msg.Kind, "queue_full")
		return ErrQueueFull
	}
}

// Backlog reports queued messages, queue capacity and whether intake stopped.
func (d *Dispatcher) Backlog() (int, int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.queue), cap(d.queue), d.closed
}

func (d *Dispatcher) work() error {
	for j := range d.queue {
		ctx := d.runCtx
		if j.spanContext.IsValid() {
			ctx = trace.ContextWithRemoteSpanContext(ctx, j.spanContext)
		}
		d.deliver(ctx, j)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	start := time.Now()
	err := deliverWithRetry(ctx, d.mailer, j.msg, d.opts.MaxRetries, d.opts.RetryBase)
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
		d.logger.ErrorContext(ctx, "email delivery failed",
			"kind", j.msg.Kind,
			"to", j.msg.To,
			"queued_for", start.Sub(j.enqueuedAt).String(),
			"error", err,
		)
	}
	observability.RecordNotificationDispatch(ctx, j.msg.Kind, outcome)
	observability.RecordNotificationDeliveryDuration(ctx, j.msg.Kind, outcome, time.Since(start))
}

// Close stops intake and waits for queued messages to drain. When ctx ends
// first, in-flight retries are cancelled and the remaining queue is dropped.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("drain notification queue: %w", ctx.Err())
	}
}

func deliverWithRetry(ctx context.Context, mailer Mailer, msg Message, maxRetries int, base time.Duration) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	b := retry.WithMaxRetries(uint64(maxRetries), retry.WithJitterPercent(10, retry.NewExponential(base)))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := mailer.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// SyncDispatcher delivers inline with the same retry policy. Tests use it to
// assert on delivered mail without draining a queue.
type SyncDispatcher struct {
	renderer   *Renderer
	mailer     Mailer
	maxRetries int
	retryBase  time.Duration
}

func NewSyncDispatcher(renderer *Renderer, mailer Mailer, maxRetries int, retryBase time.Duration) *SyncDispatcher {
	if retryBase <= 0 {
		retryBase = 10 * time.Millisecond
	}
	return &SyncDispatcher{renderer: renderer, mailer: mailer, maxRetries: maxRetries, retryBase: retryBase}
}

func (d *SyncDispatcher) SendVerificationEmail(ctx context.Context, email, code string) error {
	msg, err := d.renderer.Verification(email, code)
	if err != nil {
		return err
	}
	return d.send(ctx, msg)
}

func (d *SyncDispatcher) SendPasswordResetEmail(ctx context.Context, email, rawToken string, details ResetDetails) error {
	msg, err := d.renderer.PasswordReset(email, rawToken, details)
	if err != nil {
		return err
	}
	return d.send(ctx, msg)
}

func (d *SyncDispatcher) send(ctx context.Context, msg Message) error {
	err := deliverWithRetry(ctx, d.mailer, msg, d.maxRetries, d.retryBase)
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
	}
	observability.RecordNotificationDispatch(ctx, msg.Kind, outcome)
	return err
}

func (d *SyncDispatcher) Close(context.Context) error { return nil }
