// Package syncer mirrors task mutations to a remote system of record. Every
// mutation is applied to a local store first and returns at once; the remote
// call runs later on a single worker in the order the mutations were made.
// When a remote call fails the local view is replaced by the remote listing.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/tweeklike/internal/constants"
	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/remote"
	"github.com/julianstephens/tweeklike/internal/taskstore"
)

type Option func(*Adapter)

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithStoreOptions configures the local store, e.g. its clock or horizon.
func WithStoreOptions(opts ...taskstore.Option) Option {
	return func(a *Adapter) { a.storeOpts = append(a.storeOpts, opts...) }
}

type Adapter struct {
	api   remote.API
	local *taskstore.Store
	log   *log.Logger

	timeout   time.Duration
	storeOpts []taskstore.Option

	// mu orders local mutations with their enqueueing, and the worker's
	// rekeys and refresh swaps with both.
	mu    sync.Mutex
	ids   map[string]string
	queue []*Pending
	tail  *Pending
	// busy is set while a remote call is in flight. dirty means a refresh
	// landed before queued or in-flight calls reached the remote, so their
	// local effects were replaced and another refresh is owed once the
	// queue drains.
	busy  bool
	dirty bool

	refreshSeq atomic.Uint64
	applied    uint64
	failures   atomic.Int64

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closed    bool
}

// New starts an adapter over api with an empty local view. Call Refresh to
// load the remote collection.
func New(api remote.API, opts ...Option) *Adapter {
	a := &Adapter{
		api:     api,
		log:     logger.With("syncer"),
		timeout: constants.DefaultRemoteTimeout,
		ids:     make(map[string]string),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	storeOpts := append([]taskstore.Option{taskstore.WithIDGenerator(taskstore.TempIDs())}, a.storeOpts...)
	a.local = taskstore.New(nil, storeOpts...)

	go a.run()
	return a
}

// Refresh replaces the local view with the remote collection.
func (a *Adapter) Refresh(ctx context.Context) error {
	return a.refresh(ctx)
}

func (a *Adapter) refresh(ctx context.Context) error {
	seq := a.refreshSeq.Add(1)

	ctx, cancel := a.callContext(ctx)
	defer cancel()
	tasks, err := a.api.List(ctx, models.Someday, models.Someday)
	if err != nil {
		return fmt.Errorf("%w: refresh: %v", apperrors.ErrSync, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq <= a.applied {
		a.log.Debug("Discarding stale refresh", "seq", seq, "applied", a.applied)
		return nil
	}
	a.applied = seq
	if err := a.local.Replace(tasks); err != nil {
		return fmt.Errorf("failed to apply refresh: %w", err)
	}
	a.dirty = a.busy || len(a.queue) > 0
	a.log.Debug("Refreshed local view", "seq", seq, "tasks", len(tasks), "pending", len(a.queue))
	return nil
}

// Flush waits until every operation queued so far has run.
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	tail := a.tail
	a.mu.Unlock()
	if tail == nil {
		return nil
	}

	select {
	case <-tail.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after the call in flight. Operations still queued
// resolve with ErrClosed.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		close(a.stop)
		<-a.done

		a.mu.Lock()
		queued := a.queue
		a.queue = nil
		a.mu.Unlock()
		for _, p := range queued {
			p.resolve(ErrClosed)
		}
		if len(queued) > 0 {
			a.log.Warn("Abandoned queued operations", "count", len(queued))
		}
	})
	return nil
}

// Failures reports how many remote calls have failed.
func (a *Adapter) Failures() int64 {
	return a.failures.Load()
}

// Local exposes the optimistic view.
func (a *Adapter) Local() *taskstore.Store {
	return a.local
}

// enqueue must be called with mu held.
func (a *Adapter) enqueue(p *Pending) *Pending {
	if a.closed {
		p.resolve(ErrClosed)
		return p
	}
	a.queue = append(a.queue, p)
	a.tail = p
	select {
	case a.wake <- struct{}{}:
	default:
	}
	return p
}

func (a *Adapter) next() *Pending {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queue) == 0 {
		return nil
	}
	p := a.queue[0]
	a.queue[0] = nil
	a.queue = a.queue[1:]
	return p
}

func (a *Adapter) run() {
	defer close(a.done)
	for {
		select {
		case <-a.stop:
			return
		case <-a.wake:
		}

		for {
			select {
			case <-a.stop:
				return
			default:
			}
			p := a.next()
			if p == nil {
				break
			}
			a.execute(p)
		}
	}
}

func (a *Adapter) execute(p *Pending) {
	a.setBusy(true)
	ctx, cancel := a.callContext(context.Background())
	err := p.call(ctx)
	cancel()
	a.setBusy(false)
	if err != nil {
		a.failures.Add(1)
		err = fmt.Errorf("%w: %s: %v", apperrors.ErrSync, p.name, err)
		a.log.Warn("Sync failure, refreshing from remote", "op", p.name, "error", err)
	}

	if err != nil || p.refresh {
		if rerr := a.refresh(context.Background()); rerr != nil {
			a.log.Error("Refresh failed", "op", p.name, "error", rerr)
		}
	}
	if a.owesRefresh() {
		a.log.Debug("Queue drained after a refresh, refreshing again", "op", p.name)
		if rerr := a.refresh(context.Background()); rerr != nil {
			a.log.Error("Trailing refresh failed", "op", p.name, "error", rerr)
		}
	}
	p.resolve(err)
}

func (a *Adapter) setBusy(busy bool) {
	a.mu.Lock()
	a.busy = busy
	a.mu.Unlock()
}

// owesRefresh reports whether the queue is empty and a refresh since the
// last drain replaced local effects that have since reached the remote.
func (a *Adapter) owesRefresh() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queue) > 0 || !a.dirty {
		return false
	}
	a.dirty = false
	return true
}

func (a *Adapter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
