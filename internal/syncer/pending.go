package syncer

import (
	"context"
	"errors"
)

// ErrClosed is the result of operations still queued when the adapter closed.
var ErrClosed = errors.New("sync adapter closed")

// Pending is a queued remote call. Done is closed once the call has run (or
// was abandoned) and Err then holds its result.
type Pending struct {
	name    string
	call    func(ctx context.Context) error
	refresh bool

	done chan struct{}
	err  error
}

func newPending(name string, refresh bool, call func(ctx context.Context) error) *Pending {
	return &Pending{
		name:    name,
		call:    call,
		refresh: refresh,
		done:    make(chan struct{}),
	}
}

func (p *Pending) Name() string {
	return p.name
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the remote result. It is only meaningful after Done is closed.
func (p *Pending) Err() error {
	return p.err
}

// Wait blocks until the call has run or ctx ends.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pending) resolve(err error) {
	p.err = err
	close(p.done)
}
