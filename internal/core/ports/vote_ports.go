package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
)

// VoteRepository mutations are transactional: each one applies the vote row
// change and the matching tally adjustments atomically, so readers never see
// counts that disagree with the recorded votes.
type VoteRepository interface {
	// Insert records a new vote and increments the option and poll tallies.
	// The store's uniqueness constraints reject duplicates with
	// domain.ErrDuplicateVote.
	Insert(ctx context.Context, vote *domain.Vote, singleChoice bool) error
	// Replace removes the voter's existing live vote on the poll (if any) and
	// records the new one in the same transaction. Used for choice switches on
	// single-choice polls.
	Replace(ctx context.Context, vote *domain.Vote) error
	// Delete removes one specific vote and decrements the tallies, failing
	// with domain.ErrVoteNotFound when no such vote exists.
	Delete(ctx context.Context, pollID, optionID, voterID uuid.UUID) error
	VotesForVoter(ctx context.Context, pollID, voterID uuid.UUID) ([]*domain.Vote, error)
}

type CastVoteInput struct {
	PollID   uuid.UUID
	OptionID uuid.UUID
	VoterID  uuid.UUID
}

type VoteService interface {
	Cast(ctx context.Context, input CastVoteInput) (*domain.Vote, error)
	Retract(ctx context.Context, pollID, optionID, voterID uuid.UUID) error
	MyVotes(ctx context.Context, pollID, voterID uuid.UUID) ([]*domain.Vote, error)
}
