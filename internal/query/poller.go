package query

import (
	"context"
	"sync"
	"time"
)

// poller runs tick at a fixed cadence until stopped or ctx is cancelled.
type poller struct {
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

// startPoller launches the ticking goroutine and returns immediately. The
// first tick fires after one interval. Ticks run on the poller goroutine, so a
// slow fetch delays the next tick rather than overlapping it.
func startPoller(ctx context.Context, interval time.Duration, tick func(context.Context)) *poller {
	p := &poller{interval: interval, done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.done:
				return
			case <-ticker.C:
			}
			// A stop racing the ticker must win.
			select {
			case <-p.done:
				return
			default:
			}
			tick(ctx)
		}
	}()
	return p
}

func (p *poller) stop() {
	p.once.Do(func() { close(p.done) })
}
