package domain

import "github.com/google/uuid"

type EntityKind string

const (
	EntityPoll EntityKind = "poll"
	EntityVote EntityKind = "vote"
)

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent tells interested consumers which entity changed so they can
// re-query just that entity instead of reloading whole collections.
type ChangeEvent struct {
	Entity EntityKind `json:"entity"`
	ID     uuid.UUID  `json:"id"`
	PollID uuid.UUID  `json:"poll_id"`
	Kind   ChangeKind `json:"kind"`
}
