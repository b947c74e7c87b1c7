package ports

import (
	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
)

type EventPublisher interface {
	Publish(event domain.ChangeEvent)
}

// EventSubscriber delivers change events for a single poll. The returned
// cancel func must be called to release the subscription.
type EventSubscriber interface {
	Subscribe(pollID uuid.UUID) (<-chan domain.ChangeEvent, func())
}
