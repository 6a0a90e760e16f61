package orchestration

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/ema-avatar/core/events"
)

type subscriber struct {
	callback func(events.Event)
	active   atomic.Bool
}

// eventBus delivers events in the order they were enqueued. Whichever
// goroutine finds the bus idle drains the queue, so subscribers are never
// called concurrently, and a subscriber that causes new events only appends
// them to the queue.
type eventBus struct {
	mu          sync.Mutex
	subscribers []*subscriber
	queue       []events.Event
	draining    bool
}

func newEventBus() *eventBus {
	return &eventBus{}
}

func (b *eventBus) subscribe(callback func(events.Event)) (unsubscribe func()) {
	if callback == nil {
		return func() {}
	}

	s := &subscriber{callback: callback}
	s.active.Store(true)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, s)
	b.mu.Unlock()

	return func() {
		if !s.active.Swap(false) {
			return
		}
		b.mu.Lock()
		b.subscribers = slices.DeleteFunc(b.subscribers, func(other *subscriber) bool { return other == s })
		b.mu.Unlock()
	}
}

func (b *eventBus) enqueue(event events.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	b.mu.Unlock()
}

// drain delivers queued events unless another goroutine is already doing so.
// It must not be called while holding a lock a subscriber might need.
func (b *eventBus) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	defer func() {
		b.draining = false
		b.mu.Unlock()
	}()

	for len(b.queue) > 0 {
		event := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		subscribers := slices.Clone(b.subscribers)

		b.mu.Unlock()
		b.deliver(event, subscribers)
		b.mu.Lock()
	}
	b.queue = nil
}

func (b *eventBus) deliver(event events.Event, subscribers []*subscriber) {
	for _, s := range subscribers {
		if !s.active.Load() {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event subscriber panicked", "kind", string(event.Kind()), "panic", r)
				}
			}()
			s.callback(event)
		}()
	}
}

func (b *eventBus) emit(event events.Event) {
	b.enqueue(event)
	b.drain()
}
