package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/pollbox/pollbox/internal/core/ports"
)

type voteService struct {
	pollRepo ports.PollRepository
	voteRepo ports.VoteRepository
	events   ports.EventPublisher
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository, events ports.EventPublisher) ports.VoteService {
	return &voteService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		events:   events,
	}
}

// Cast records a vote according to the poll's configuration. On single-choice
// polls an existing vote for another option is replaced atomically; voting the
// same option again fails with ErrDuplicateVote. On multiple-choice polls the
// insert is attempted directly and the store's uniqueness constraint rejects
// duplicates, which also settles double-submit races.
func (s *voteService) Cast(ctx context.Context, input ports.CastVoteInput) (*domain.Vote, error) {
	if input.VoterID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsActive {
		return nil, domain.ErrPollInactive
	}
	if poll.Option(input.OptionID) == nil {
		return nil, domain.ErrOptionNotInPoll
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		PollID:    input.PollID,
		OptionID:  input.OptionID,
		VoterID:   input.VoterID,
		CreatedAt: time.Now(),
	}

	if poll.AllowMultipleChoices {
		if err := s.voteRepo.Insert(ctx, vote, false); err != nil {
			return nil, err
		}
		s.publish(vote, domain.ChangeCreated)
		return vote, nil
	}

	existing, err := s.voteRepo.VotesForVoter(ctx, input.PollID, input.VoterID)
	if err != nil {
		return nil, err
	}
	switch {
	case len(existing) == 0:
		err = s.voteRepo.Insert(ctx, vote, true)
	case existing[0].OptionID == input.OptionID:
		return nil, domain.ErrDuplicateVote
	default:
		err = s.voteRepo.Replace(ctx, vote)
	}
	if err != nil {
		return nil, err
	}

	s.publish(vote, domain.ChangeCreated)
	return vote, nil
}

func (s *voteService) Retract(ctx context.Context, pollID, optionID, voterID uuid.UUID) error {
	if voterID == uuid.Nil {
		return domain.ErrUnauthorized
	}

	if err := s.voteRepo.Delete(ctx, pollID, optionID, voterID); err != nil {
		return err
	}

	s.publish(&domain.Vote{PollID: pollID, OptionID: optionID, VoterID: voterID}, domain.ChangeDeleted)
	return nil
}

func (s *voteService) MyVotes(ctx context.Context, pollID, voterID uuid.UUID) ([]*domain.Vote, error) {
	if voterID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return s.voteRepo.VotesForVoter(ctx, pollID, voterID)
}

func (s *voteService) publish(vote *domain.Vote, kind domain.ChangeKind) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.ChangeEvent{
		Entity: domain.EntityVote,
		ID:     vote.ID,
		PollID: vote.PollID,
		Kind:   kind,
	})
}
