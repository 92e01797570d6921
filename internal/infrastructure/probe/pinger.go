package probe

import (
	"context"
	"sync"
	"time"

	"CardioSense/internal/ports"
)

// Pinger runs a job on a fixed interval, firing once immediately on start.
// It drives the backend keep-warm health probe: the hosted classifier spins
// down when idle and a periodic ping keeps first predictions fast.
type Pinger struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Probe = (*Pinger)(nil)

// NewPinger builds a pinger; non-positive intervals default to ten minutes.
func NewPinger(interval time.Duration) *Pinger {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Pinger{interval: interval}
}

// Start begins ticking. Starting an already-running pinger is a no-op.
func (p *Pinger) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return nil
	}
	// The goroutine holds its own reference; Stop may clear the field while
	// a job is still running.
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call concurrently with a running
// job and safe to call twice.
func (p *Pinger) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return nil
	}
	close(p.stop)
	p.stop = nil
	return nil
}
