package core

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wwsinagogogo/theia/filesystem"
)

// changeCoalescer throttles the service-wide change stream. Batches arriving
// faster than the configured rate are merged into one pending batch and
// flushed once the limiter grants a slot, so slow consumers see fewer,
// larger batches while record order is preserved.
type changeCoalescer struct {
	limiter *rate.Limiter
	out     func(filesystem.FileChangesEvent)

	mu      sync.Mutex
	pending []filesystem.FileChange
	timer   *time.Timer
}

// newChangeCoalescer creates a coalescer delivering through out. A
// non-positive eventsPerSec disables throttling entirely.
func newChangeCoalescer(eventsPerSec float64, burst int, out func(filesystem.FileChangesEvent)) *changeCoalescer {
	c := &changeCoalescer{out: out}
	if eventsPerSec > 0 {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(eventsPerSec), burst)
	}
	return c
}

// add accepts one incoming batch and either forwards it immediately or folds
// it into the pending batch awaiting the next flush slot.
func (c *changeCoalescer) add(ev filesystem.FileChangesEvent) {
	if c.limiter == nil {
		c.out(ev)
		return
	}

	c.mu.Lock()
	c.pending = append(c.pending, ev.Changes()...)
	if c.timer != nil {
		// A flush is already scheduled; this batch rides along.
		c.mu.Unlock()
		return
	}

	delay := c.limiter.Reserve().Delay()
	if delay == 0 {
		c.flushLocked()
		return
	}
	c.timer = time.AfterFunc(delay, c.flush)
	c.mu.Unlock()
}

func (c *changeCoalescer) flush() {
	c.mu.Lock()
	c.flushLocked()
}

// flushLocked emits the pending batch. It releases c.mu before delivering so
// a subscriber handling the event can re-enter the coalescer.
func (c *changeCoalescer) flushLocked() {
	batch := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()

	if len(batch) > 0 {
		c.out(filesystem.NewFileChangesEvent(batch))
	}
}
