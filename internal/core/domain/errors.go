package domain

import "errors"

var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrPollInactive     = errors.New("poll is closed to voting")
	ErrInvalidPollID    = errors.New("invalid poll id")
	ErrOptionNotInPoll  = errors.New("option does not belong to this poll")
	ErrDuplicateVote    = errors.New("voter already voted for this option")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrUnauthorized     = errors.New("no authenticated voter")
	ErrNotPollOwner     = errors.New("only the poll owner may do this")
	ErrConflict         = errors.New("concurrent write conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)
