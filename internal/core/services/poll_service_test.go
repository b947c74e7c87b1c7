package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/pollbox/pollbox/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPollFixture() (ports.PollService, *memStore, *recordedEvents) {
	store := newMemStore()
	events := &recordedEvents{}
	return NewPollService(memPollRepo{store}, events), store, events
}

func TestCreatePoll(t *testing.T) {
	svc, _, events := newPollFixture()

	poll, err := svc.Create(context.Background(), ports.CreatePollInput{
		Title:   "Lunch?",
		Options: []string{"Pizza", "Sushi", "Burgers"},
		OwnerID: uuid.New(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, poll.ID)
	assert.True(t, poll.IsActive)
	assert.False(t, poll.AllowMultipleChoices)
	assert.Len(t, poll.Options, 3)
	for _, opt := range poll.Options {
		assert.Equal(t, poll.ID, opt.PollID)
		assert.Equal(t, int64(0), opt.VoteCount)
	}

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, domain.EntityPoll, published[0].Entity)
}

func TestCreatePollValidation(t *testing.T) {
	svc, _, _ := newPollFixture()
	owner := uuid.New()

	_, err := svc.Create(context.Background(), ports.CreatePollInput{
		Title: "", Options: []string{"A", "B"}, OwnerID: owner,
	})
	require.Error(t, err)

	// Blank options are dropped before the minimum is checked.
	_, err = svc.Create(context.Background(), ports.CreatePollInput{
		Title: "Lunch?", Options: []string{"A", "  ", ""}, OwnerID: owner,
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), ports.CreatePollInput{
		Title: "Lunch?", Options: []string{"A", "B"}, OwnerID: uuid.Nil,
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetPollInvalidID(t *testing.T) {
	svc, _, _ := newPollFixture()

	_, err := svc.GetPoll(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrInvalidPollID)
}

func TestClosePoll(t *testing.T) {
	svc, store, _ := newPollFixture()
	owner := uuid.New()
	poll := newStorePoll(store, owner, false, "A", "B")

	require.NoError(t, svc.Close(context.Background(), poll.ID.String(), owner))

	got, err := memPollRepo{store}.GetByID(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Closing an already-closed poll is a no-op.
	require.NoError(t, svc.Close(context.Background(), poll.ID.String(), owner))
}

func TestClosePollNotOwner(t *testing.T) {
	svc, store, _ := newPollFixture()
	poll := newStorePoll(store, uuid.New(), false, "A", "B")

	err := svc.Close(context.Background(), poll.ID.String(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotPollOwner)
}

func TestDeletePollCascades(t *testing.T) {
	pollSvc, store, _ := newPollFixture()
	owner := uuid.New()
	poll := newStorePoll(store, owner, false, "A", "B")

	voteSvc := NewVoteService(memPollRepo{store}, memVoteRepo{store}, nil)
	_, err := voteSvc.Cast(context.Background(), ports.CastVoteInput{
		PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, pollSvc.Delete(context.Background(), poll.ID.String(), owner))

	_, err = memPollRepo{store}.GetByID(context.Background(), poll.ID)
	require.ErrorIs(t, err, domain.ErrPollNotFound)
	assert.Empty(t, store.votes, "votes must go with their poll")
}

func TestUpdatePoll(t *testing.T) {
	svc, store, _ := newPollFixture()
	owner := uuid.New()
	poll := newStorePoll(store, owner, false, "A", "B")

	updated, err := svc.Update(context.Background(), poll.ID.String(), owner, ports.UpdatePollInput{
		Title:       "Dinner?",
		Description: "changed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dinner?", updated.Title)
	assert.Equal(t, "changed", updated.Description)
}

func TestResults(t *testing.T) {
	svc, store, _ := newPollFixture()
	poll := newStorePoll(store, uuid.New(), false, "A", "B", "C")

	voteSvc := NewVoteService(memPollRepo{store}, memVoteRepo{store}, nil)
	for i := 0; i < 3; i++ {
		_, err := voteSvc.Cast(context.Background(), ports.CastVoteInput{
			PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: uuid.New(),
		})
		require.NoError(t, err)
	}
	_, err := voteSvc.Cast(context.Background(), ports.CastVoteInput{
		PollID: poll.ID, OptionID: poll.Options[1].ID, VoterID: uuid.New(),
	})
	require.NoError(t, err)

	results, err := svc.Results(context.Background(), poll.ID.String())
	require.NoError(t, err)

	assert.Equal(t, int64(4), results.TotalVotes)
	assert.Equal(t, 75, results.Options[0].Percentage)
	assert.True(t, results.Options[0].Leading)
	assert.Equal(t, 25, results.Options[1].Percentage)
	assert.Equal(t, 0, results.Options[2].Percentage)
}
