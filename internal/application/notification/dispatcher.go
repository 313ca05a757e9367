package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/pkg/id"
)

const (
	DefaultRetries   = 3
	DefaultTimeout   = 30 * time.Second
	DefaultRetention = 7 * 24 * time.Hour
)

// Email is one outbound message. Kind labels the flow that produced it.
type Email struct {
	To      string
	Subject string
	HTML    string
	Kind    string
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) (string, error)
}

type DeadLetterStore interface {
	Put(ctx context.Context, d *domain.EmailDeadLetter) error
}

// Dispatcher delivers emails off the request path. Failed sends are retried with
// exponential backoff; the final failure is recorded as a dead letter.
type Dispatcher struct {
	mailer      Mailer
	deadLetters DeadLetterStore
	retries     uint64
	timeout     time.Duration
	retention   time.Duration
	newBackOff  func() backoff.BackOff
	now         func() time.Time
	wg          sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRetries sets how many times a failed send is retried.
func WithRetries(n uint64) Option { return func(d *Dispatcher) { d.retries = n } }

// WithTimeout bounds each delivery attempt.
func WithTimeout(t time.Duration) Option { return func(d *Dispatcher) { d.timeout = t } }

// WithRetention sets how long dead letters are kept.
func WithRetention(r time.Duration) Option { return func(d *Dispatcher) { d.retention = r } }

// WithBackOff replaces the delay policy between attempts.
func WithBackOff(f func() backoff.BackOff) Option { return func(d *Dispatcher) { d.newBackOff = f } }

// WithClock replaces the time source used for dead letter timestamps.
func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

// NewDispatcher builds a Dispatcher. deadLetters may be nil, in which case
// failures are only logged.
func NewDispatcher(mailer Mailer, deadLetters DeadLetterStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		mailer:      mailer,
		deadLetters: deadLetters,
		retries:     DefaultRetries,
		timeout:     DefaultTimeout,
		retention:   DefaultRetention,
		newBackOff:  defaultBackOff,
		now:         time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Dispatch sends e on its own goroutine and returns immediately. onFailure,
// when non-nil, runs on that goroutine after the last attempt fails.
func (d *Dispatcher) Dispatch(e Email, onFailure func(error)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Send(context.Background(), e); err != nil && onFailure != nil {
			onFailure(err)
		}
	}()
}

// Send delivers e synchronously, retrying transient failures.
func (d *Dispatcher) Send(ctx context.Context, e Email) error {
	attempts := 0
	op := func() error {
		attempts++
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		msgID, err := d.mailer.SendEmail(sendCtx, e.To, e.Subject, e.HTML)
		if err != nil {
			slog.Warn("email attempt failed", "to", e.To, "kind", e.Kind, "attempt", attempts, "err", err)
			return err
		}
		slog.Info("email sent", "to", e.To, "kind", e.Kind, "message_id", msgID)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), d.retries), ctx)
	err := backoff.Retry(op, policy)
	if err == nil {
		return nil
	}
	slog.Error("email delivery failed", "to", e.To, "kind", e.Kind, "attempts", attempts, "err", err)
	d.deadLetter(e, err, attempts)
	return fmt.Errorf("deliver %s email: %w", e.Kind, err)
}

func (d *Dispatcher) deadLetter(e Email, cause error, attempts int) {
	if d.deadLetters == nil {
		return
	}
	now := d.now().UTC()
	rec := &domain.EmailDeadLetter{
		DeadLetterID: id.New(),
		To:           e.To,
		Subject:      e.Subject,
		Kind:         e.Kind,
		Error:        cause.Error(),
		Attempts:     attempts,
		CreatedAt:    now,
		ExpiresAt:    now.Add(d.retention).Unix(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.deadLetters.Put(ctx, rec); err != nil {
		slog.Error("failed to store email dead letter", "to", e.To, "kind", e.Kind, "err", err)
	}
}

// Wait blocks until every dispatched email has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() when sends are
// still in flight at the deadline.
func (d *Dispatcher) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
