package session

import (
	"context"
	"sync"
	"time"
)

// Refresher schedules periodic refreshes. The ticker-based implementation can
// be replaced by a push-driven one without touching consuming components.
type Refresher interface {
	Start(ctx context.Context, interval time.Duration, fn func(context.Context))
	Stop()
}

// Poller runs fn on a fixed interval until stopped.
type Poller struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewPoller constructs an idle Poller.
func NewPoller() *Poller {
	return &Poller{}
}

// Start launches the refresh loop. Calling Start on a running poller restarts
// it with the new interval.
func (p *Poller) Start(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	p.Stop()

	p.mu.Lock()
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop = stop
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
