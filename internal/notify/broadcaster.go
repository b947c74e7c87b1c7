// Package notify fans store change events out to in-process subscribers.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
)

const subscriberBuffer = 16

// Broadcaster is an in-process publisher keyed by poll id. Publish never
// blocks: a subscriber whose buffer is full misses the event and is expected
// to re-query on the next one it does receive.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[chan domain.ChangeEvent]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[uuid.UUID]map[chan domain.ChangeEvent]struct{}),
	}
}

func (b *Broadcaster) Publish(event domain.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for ch := range b.subs[event.PollID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *Broadcaster) Subscribe(pollID uuid.UUID) (<-chan domain.ChangeEvent, func()) {
	ch := make(chan domain.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	if b.subs[pollID] == nil {
		b.subs[pollID] = make(map[chan domain.ChangeEvent]struct{})
	}
	b.subs[pollID][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[pollID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(b.subs, pollID)
				}
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close drops all subscriptions; further Publish calls are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	for _, set := range b.subs {
		for ch := range set {
			close(ch)
		}
	}
	b.subs = nil
}
