package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/pollbox/pollbox/internal/core/ports"
)

const pollsPerPage = 10

type pollService struct {
	repo   ports.PollRepository
	events ports.EventPublisher
}

func NewPollService(repo ports.PollRepository, events ports.EventPublisher) ports.PollService {
	return &pollService{
		repo:   repo,
		events: events,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	if input.OwnerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("title is required")
	}

	pollID := uuid.New()
	now := time.Now()

	poll := &domain.Poll{
		ID:                   pollID,
		Title:                input.Title,
		Description:          input.Description,
		OwnerID:              input.OwnerID,
		IsActive:             true,
		AllowMultipleChoices: input.AllowMultipleChoices,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	for _, optText := range input.Options {
		if strings.TrimSpace(optText) == "" {
			continue
		}
		poll.Options = append(poll.Options, domain.PollOption{
			ID:        uuid.New(),
			PollID:    pollID,
			Text:      optText,
			CreatedAt: now,
		})
	}

	if len(poll.Options) < 2 {
		return nil, errors.New("at least two options are required")
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	s.publish(poll.ID, domain.ChangeCreated)
	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pollsPerPage

	if q := strings.TrimSpace(input.Query); q != "" {
		return s.repo.Search(ctx, pollsPerPage, offset, q)
	}
	return s.repo.List(ctx, pollsPerPage, offset)
}

func (s *pollService) Results(ctx context.Context, id string) (*domain.PollResults, error) {
	poll, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewPollResults(poll), nil
}

func (s *pollService) Update(ctx context.Context, id string, ownerID uuid.UUID, input ports.UpdatePollInput) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) != "" {
		poll.Title = input.Title
	}
	poll.Description = input.Description
	poll.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, poll); err != nil {
		return nil, err
	}

	s.publish(poll.ID, domain.ChangeUpdated)
	return poll, nil
}

// Close takes the poll out of voting. The transition is one-directional: a
// closed poll cannot be reopened.
func (s *pollService) Close(ctx context.Context, id string, ownerID uuid.UUID) error {
	poll, err := s.ownedPoll(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !poll.IsActive {
		return nil
	}

	if err := s.repo.Close(ctx, poll.ID); err != nil {
		return err
	}

	s.publish(poll.ID, domain.ChangeUpdated)
	return nil
}

func (s *pollService) Delete(ctx context.Context, id string, ownerID uuid.UUID) error {
	poll, err := s.ownedPoll(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, poll.ID); err != nil {
		return err
	}

	s.publish(poll.ID, domain.ChangeDeleted)
	return nil
}

func (s *pollService) ownedPoll(ctx context.Context, id string, ownerID uuid.UUID) (*domain.Poll, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}

	poll, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	if poll.OwnerID != ownerID {
		return nil, domain.ErrNotPollOwner
	}
	return poll, nil
}

func (s *pollService) publish(pollID uuid.UUID, kind domain.ChangeKind) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.ChangeEvent{
		Entity: domain.EntityPoll,
		ID:     pollID,
		PollID: pollID,
		Kind:   kind,
	})
}
