// Package poller repeats a fetch on a fixed interval until it returns items,
// the attempt budget runs out, or the owner cancels it.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State string

const (
	StateReady     State = "ready"
	StateExhausted State = "exhausted"
	StateCancelled State = "cancelled"
)

const (
	DefaultMaxAttempts = 5
	DefaultInterval    = 5 * time.Second
)

var (
	ErrFetchInFlight = errors.New("fetch already in flight")
	ErrCancelled     = errors.New("poller cancelled")
)

type FetchFunc[T any] func(ctx context.Context) ([]T, error)

type Options struct {
	MaxAttempts int
	Interval    time.Duration
}

type Result[T any] struct {
	Items    []T
	State    State
	Attempts int
	// Err is the last fetch error seen, if any. Fetch errors count as an
	// empty attempt rather than stopping the loop.
	Err error
}

type Poller[T any] struct {
	fetch FetchFunc[T]
	opts  Options

	// fetchMu admits one fetch at a time, automatic or manual.
	fetchMu sync.Mutex

	mu       sync.Mutex
	attempts int

	found  chan []T
	ctx    context.Context
	cancel context.CancelFunc
}

func New[T any](fetch FetchFunc[T], opts Options) *Poller[T] {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller[T]{
		fetch:  fetch,
		opts:   opts,
		found:  make(chan []T, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run fetches immediately and then once per interval while the result is
// empty. The first fetch counts as attempt one, so at most MaxAttempts
// automatic fetches happen.
func (p *Poller[T]) Run(ctx context.Context) Result[T] {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	var lastErr error
	for {
		items, attempts, ok, err := p.autoFetch(runCtx)
		if !ok {
			return Result[T]{State: StateCancelled, Attempts: attempts, Err: lastErr}
		}
		if err != nil {
			lastErr = err
		} else if len(items) > 0 {
			return Result[T]{Items: items, State: StateReady, Attempts: attempts}
		}
		if attempts >= p.opts.MaxAttempts {
			return Result[T]{State: StateExhausted, Attempts: attempts, Err: lastErr}
		}

		timer := time.NewTimer(p.opts.Interval)
		select {
		case <-runCtx.Done():
			timer.Stop()
			return Result[T]{State: StateCancelled, Attempts: attempts, Err: lastErr}
		case items := <-p.found:
			timer.Stop()
			return Result[T]{Items: items, State: StateReady, Attempts: attempts}
		case <-timer.C:
		}
	}
}

func (p *Poller[T]) autoFetch(ctx context.Context) ([]T, int, bool, error) {
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	if ctx.Err() != nil {
		return nil, p.Attempts(), false, nil
	}

	items, err := p.fetch(ctx)

	p.mu.Lock()
	p.attempts++
	attempts := p.attempts
	p.mu.Unlock()

	if ctx.Err() != nil {
		return nil, attempts, false, nil
	}
	return items, attempts, true, err
}

// Refresh performs one fetch outside the schedule. It never consumes an
// automatic attempt and fails with ErrFetchInFlight rather than queueing
// behind a running fetch. Items it finds end a concurrent Run.
func (p *Poller[T]) Refresh(ctx context.Context) ([]T, error) {
	if p.ctx.Err() != nil {
		return nil, ErrCancelled
	}
	if !p.fetchMu.TryLock() {
		return nil, ErrFetchInFlight
	}
	defer p.fetchMu.Unlock()

	items, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 && p.ctx.Err() == nil {
		select {
		case p.found <- items:
		default:
		}
	}
	return items, nil
}

func (p *Poller[T]) Cancel() {
	p.cancel()
}

func (p *Poller[T]) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}
