package filesystem

import (
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is the per-subscription channel capacity. A subscriber
// that falls this far behind starts losing events rather than stalling the
// provider's notification loop.
const subscriberBuffer = 64

// ChangeEmitter fans change batches out to independent subscribers. Each
// subscription owns its cursor: disposal of one never affects the others.
// Emission order is preserved per subscriber. After disposal at most one
// already-buffered event may still be observed before the channel closes.
type ChangeEmitter struct {
	mu   sync.RWMutex
	subs map[string]chan FileChangesEvent
}

// NewChangeEmitter creates an emitter with no subscribers.
func NewChangeEmitter() *ChangeEmitter {
	return &ChangeEmitter{subs: make(map[string]chan FileChangesEvent)}
}

// Subscribe registers a new independent cursor on the stream. The returned
// Disposable stops delivery and closes the channel; disposing twice is safe.
func (e *ChangeEmitter) Subscribe() (<-chan FileChangesEvent, Disposable) {
	ch := make(chan FileChangesEvent, subscriberBuffer)
	id := uuid.NewString()

	e.mu.Lock()
	e.subs[id] = ch
	e.mu.Unlock()

	return ch, DisposableFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
	})
}

// Emit delivers ev to every live subscriber. Delivery never blocks; a
// subscriber whose buffer is full misses the event.
func (e *ChangeEmitter) Emit(ev FileChangesEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Len returns the number of live subscriptions.
func (e *ChangeEmitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

// CapabilityEmitter announces capability-set updates to subscribers. Same
// delivery contract as ChangeEmitter.
type CapabilityEmitter struct {
	mu   sync.RWMutex
	subs map[string]chan Capabilities
}

// NewCapabilityEmitter creates an emitter with no subscribers.
func NewCapabilityEmitter() *CapabilityEmitter {
	return &CapabilityEmitter{subs: make(map[string]chan Capabilities)}
}

// Subscribe registers a new independent cursor on the stream.
func (e *CapabilityEmitter) Subscribe() (<-chan Capabilities, Disposable) {
	ch := make(chan Capabilities, subscriberBuffer)
	id := uuid.NewString()

	e.mu.Lock()
	e.subs[id] = ch
	e.mu.Unlock()

	return ch, DisposableFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
	})
}

// Emit announces caps to every live subscriber without blocking.
func (e *CapabilityEmitter) Emit(caps Capabilities) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subs {
		select {
		case ch <- caps:
		default:
		}
	}
}
