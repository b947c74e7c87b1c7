package domain

import (
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID                   uuid.UUID    `json:"id"`
	Title                string       `json:"title"`
	Description          string       `json:"description,omitempty"`
	OwnerID              uuid.UUID    `json:"owner_id"`
	IsActive             bool         `json:"is_active"`
	AllowMultipleChoices bool         `json:"allow_multiple_choices"`
	TotalVotes           int64        `json:"total_votes"`
	Options              []PollOption `json:"options"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

type PollOption struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	Text      string    `json:"text"`
	VoteCount int64     `json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Option lookup by id; nil when the option is not part of the poll.
func (p *Poll) Option(optionID uuid.UUID) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}
