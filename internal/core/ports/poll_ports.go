package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error)
	Update(ctx context.Context, poll *domain.Poll) error
	Close(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreatePollInput struct {
	Title                string
	Description          string
	Options              []string
	OwnerID              uuid.UUID
	AllowMultipleChoices bool
}

type UpdatePollInput struct {
	Title       string
	Description string
}

type ListPollsInput struct {
	Page  int
	Query string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	Results(ctx context.Context, id string) (*domain.PollResults, error)
	Update(ctx context.Context, id string, ownerID uuid.UUID, input UpdatePollInput) (*domain.Poll, error)
	Close(ctx context.Context, id string, ownerID uuid.UUID) error
	Delete(ctx context.Context, id string, ownerID uuid.UUID) error
}
