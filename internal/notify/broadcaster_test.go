package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesPollSubscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	pollID := uuid.New()
	ch, cancel := b.Subscribe(pollID)
	defer cancel()

	otherCh, otherCancel := b.Subscribe(uuid.New())
	defer otherCancel()

	event := domain.ChangeEvent{
		Entity: domain.EntityVote,
		ID:     uuid.New(),
		PollID: pollID,
		Kind:   domain.ChangeCreated,
	}
	b.Publish(event)

	select {
	case got := <-ch:
		assert.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	select {
	case got := <-otherCh:
		t.Fatalf("subscriber for another poll received %+v", got)
	default:
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	pollID := uuid.New()
	_, cancel := b.Subscribe(pollID)
	defer cancel()

	// Nobody is draining; publishes past the buffer are dropped, not stuck.
	for i := 0; i < subscriberBuffer*2; i++ {
		b.Publish(domain.ChangeEvent{PollID: pollID})
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	pollID := uuid.New()
	ch, cancel := b.Subscribe(pollID)
	cancel()
	cancel() // safe to call twice

	_, open := <-ch
	require.False(t, open)

	b.Publish(domain.ChangeEvent{PollID: pollID})
}

func TestCloseDropsSubscribers(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe(uuid.New())
	defer cancel()

	b.Close()

	_, open := <-ch
	require.False(t, open)

	b.Publish(domain.ChangeEvent{})
	_, cancel2 := b.Subscribe(uuid.New())
	cancel2()
}
