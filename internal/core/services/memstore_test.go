package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
)

// memStore backs the service tests with the same contract the postgres
// adapters honor: unique votes, the single-choice partial constraint, and
// tallies adjusted atomically with every vote mutation. memPollRepo and
// memVoteRepo expose it through the repository ports.
type memStore struct {
	mu    sync.Mutex
	polls map[uuid.UUID]*domain.Poll
	votes []*domain.Vote
}

func newMemStore() *memStore {
	return &memStore{
		polls: make(map[uuid.UUID]*domain.Poll),
	}
}

type memPollRepo struct{ s *memStore }

func (r memPollRepo) Save(ctx context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *poll
	cp.Options = append([]domain.PollOption(nil), poll.Options...)
	r.s.polls[poll.ID] = &cp
	return nil
}

func (r memPollRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	cp := *poll
	cp.Options = append([]domain.PollOption(nil), poll.Options...)
	return &cp, nil
}

func (r memPollRepo) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var polls []*domain.Poll
	for _, p := range r.s.polls {
		cp := *p
		polls = append(polls, &cp)
	}
	return polls, nil
}

func (r memPollRepo) Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var polls []*domain.Poll
	for _, p := range r.s.polls {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			cp := *p
			polls = append(polls, &cp)
		}
	}
	return polls, nil
}

func (r memPollRepo) Update(ctx context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.polls[poll.ID]
	if !ok {
		return domain.ErrPollNotFound
	}
	existing.Title = poll.Title
	existing.Description = poll.Description
	existing.UpdatedAt = poll.UpdatedAt
	return nil
}

func (r memPollRepo) Close(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	poll.IsActive = false
	return nil
}

func (r memPollRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.s.polls, id)
	kept := r.s.votes[:0]
	for _, v := range r.s.votes {
		if v.PollID != id {
			kept = append(kept, v)
		}
	}
	r.s.votes = kept
	return nil
}

type memVoteRepo struct{ s *memStore }

func (r memVoteRepo) Insert(ctx context.Context, vote *domain.Vote, singleChoice bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.PollID == vote.PollID && v.VoterID == vote.VoterID {
			if v.OptionID == vote.OptionID || singleChoice {
				return domain.ErrDuplicateVote
			}
		}
	}
	r.s.insertLocked(vote)
	return nil
}

func (r memVoteRepo) Replace(ctx context.Context, vote *domain.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.votes[:0]
	for _, v := range r.s.votes {
		if v.PollID == vote.PollID && v.VoterID == vote.VoterID {
			r.s.adjustLocked(v.PollID, v.OptionID, -1)
			continue
		}
		kept = append(kept, v)
	}
	r.s.votes = kept
	r.s.insertLocked(vote)
	return nil
}

func (r memVoteRepo) Delete(ctx context.Context, pollID, optionID, voterID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, v := range r.s.votes {
		if v.PollID == pollID && v.OptionID == optionID && v.VoterID == voterID {
			r.s.votes = append(r.s.votes[:i], r.s.votes[i+1:]...)
			r.s.adjustLocked(pollID, optionID, -1)
			return nil
		}
	}
	return domain.ErrVoteNotFound
}

func (r memVoteRepo) VotesForVoter(ctx context.Context, pollID, voterID uuid.UUID) ([]*domain.Vote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var votes []*domain.Vote
	for _, v := range r.s.votes {
		if v.PollID == pollID && v.VoterID == voterID {
			cp := *v
			votes = append(votes, &cp)
		}
	}
	return votes, nil
}

func (s *memStore) insertLocked(vote *domain.Vote) {
	cp := *vote
	s.votes = append(s.votes, &cp)
	s.adjustLocked(vote.PollID, vote.OptionID, 1)
}

func (s *memStore) adjustLocked(pollID, optionID uuid.UUID, delta int64) {
	poll, ok := s.polls[pollID]
	if !ok {
		return
	}
	poll.TotalVotes += delta
	for i := range poll.Options {
		if poll.Options[i].ID == optionID {
			poll.Options[i].VoteCount += delta
		}
	}
}

type recordedEvents struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (r *recordedEvents) Publish(event domain.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) all() []domain.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ChangeEvent(nil), r.events...)
}

func newStorePoll(s *memStore, ownerID uuid.UUID, multi bool, optionTexts ...string) *domain.Poll {
	now := time.Now()
	poll := &domain.Poll{
		ID:                   uuid.New(),
		Title:                "Lunch?",
		OwnerID:              ownerID,
		IsActive:             true,
		AllowMultipleChoices: multi,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, text := range optionTexts {
		poll.Options = append(poll.Options, domain.PollOption{
			ID:        uuid.New(),
			PollID:    poll.ID,
			Text:      text,
			CreatedAt: now,
		})
	}
	_ = memPollRepo{s}.Save(context.Background(), poll)
	return poll
}
