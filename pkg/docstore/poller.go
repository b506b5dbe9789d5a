package docstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Ticker delivers ticks on C until Stop is called.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFunc backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// FetchFunc loads the current state. ctx is cancelled when the poller stops.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// PollerConfig holds the explicit inputs of a Poller.
type PollerConfig struct {
	Interval  time.Duration
	NewTicker TickerFunc
	Logger    *zap.Logger
}

// Poller emulates a realtime listener: it fetches once right away and then
// once per tick, handing every successful result to emit. A poller moves from
// active to stopped exactly once. Emissions never overlap, and once stopped no
// result is emitted, including the result of a fetch that was already in flight.
type Poller[T any] struct {
	fetch     FetchFunc[T]
	emit      func(T)
	interval  time.Duration
	newTicker TickerFunc
	log       *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool
	// emitMu spans the stopped check and the start of emit; emitting is set
	// while emit runs so Stop called from inside it does not wait on itself.
	emitMu   sync.Mutex
	emitting atomic.Bool
	start    sync.Once
	stop     sync.Once
	done     chan struct{}
}

// NewPoller creates a poller bound to ctx. Cancelling ctx stops it like Stop does.
func NewPoller[T any](ctx context.Context, fetch FetchFunc[T], emit func(T), cfg PollerConfig) *Poller[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	pctx, cancel := context.WithCancel(ctx)
	return &Poller[T]{
		fetch:     fetch,
		emit:      emit,
		interval:  cfg.Interval,
		newTicker: cfg.NewTicker,
		log:       cfg.Logger,
		ctx:       pctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start launches the polling goroutine. Calls after the first are no-ops.
func (p *Poller[T]) Start() {
	p.start.Do(func() {
		go p.run()
	})
}

// Stop moves the poller to stopped, aborts an in-flight fetch and releases the
// ticker. It is idempotent and safe to call from inside emit. Once it returns
// emit is not invoked again.
func (p *Poller[T]) Stop() {
	p.stop.Do(func() {
		p.stopped.Store(true)
		p.cancel()
	})
	// wait out a cycle that passed its stopped check but has not emitted yet
	if !p.emitting.Load() {
		p.emitMu.Lock()
		p.emitMu.Unlock() //nolint:staticcheck
	}
	p.start.Do(func() { close(p.done) })
}

// Stopped reports whether the poller has reached its terminal state.
func (p *Poller[T]) Stopped() bool {
	return p.stopped.Load() || p.ctx.Err() != nil
}

// Done is closed once the polling goroutine has exited.
func (p *Poller[T]) Done() <-chan struct{} { return p.done }

func (p *Poller[T]) run() {
	defer close(p.done)
	defer p.cancel()

	ticker := p.newTicker(p.interval)
	defer ticker.Stop()

	p.cycle()
	for {
		select {
		case <-p.ctx.Done():
			p.stopped.Store(true)
			return
		case <-ticker.C():
			p.cycle()
		}
	}
}

func (p *Poller[T]) cycle() {
	if p.Stopped() {
		return
	}

	result, err := p.fetch(p.ctx)

	// the caller may have stopped us while the fetch was in flight
	if p.Stopped() {
		return
	}
	if err != nil {
		p.log.Warn("poll fetch failed", zap.Error(err))
		return
	}

	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if p.Stopped() {
		return
	}
	p.emitting.Store(true)
	defer p.emitting.Store(false)
	p.emit(result)
}
