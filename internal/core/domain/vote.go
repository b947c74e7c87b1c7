package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a single voter's selection of one option within one poll.
// (PollID, OptionID, VoterID) is unique; votes are replaced or removed,
// never mutated in place.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	OptionID  uuid.UUID `json:"option_id"`
	VoterID   uuid.UUID `json:"voter_id"`
	CreatedAt time.Time `json:"created_at"`
}
