package domain

import (
	"math"

	"github.com/google/uuid"
)

type OptionResult struct {
	OptionID   uuid.UUID `json:"option_id"`
	Text       string    `json:"text"`
	VoteCount  int64     `json:"vote_count"`
	Percentage int       `json:"percentage"`
	Leading    bool      `json:"leading"`
}

type PollResults struct {
	PollID     uuid.UUID      `json:"poll_id"`
	Title      string         `json:"title"`
	IsActive   bool           `json:"is_active"`
	TotalVotes int64          `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

// NewPollResults derives per-option percentages and the leading option from
// cached tallies. Percentages are independent rounded shares; they need not
// sum to 100. The leader is the option with the strictly highest non-zero
// count, so a tie yields no leader at all.
func NewPollResults(poll *Poll) *PollResults {
	res := &PollResults{
		PollID:     poll.ID,
		Title:      poll.Title,
		IsActive:   poll.IsActive,
		TotalVotes: poll.TotalVotes,
		Options:    make([]OptionResult, 0, len(poll.Options)),
	}

	var leadIdx = -1
	var leadCount int64
	leadUnique := false
	for i, opt := range poll.Options {
		pct := 0
		if poll.TotalVotes > 0 {
			pct = int(math.Round(float64(opt.VoteCount) / float64(poll.TotalVotes) * 100))
		}
		res.Options = append(res.Options, OptionResult{
			OptionID:   opt.ID,
			Text:       opt.Text,
			VoteCount:  opt.VoteCount,
			Percentage: pct,
		})

		if opt.VoteCount == 0 {
			continue
		}
		switch {
		case opt.VoteCount > leadCount:
			leadIdx, leadCount, leadUnique = i, opt.VoteCount, true
		case opt.VoteCount == leadCount:
			leadUnique = false
		}
	}

	if leadIdx >= 0 && leadUnique {
		res.Options[leadIdx].Leading = true
	}
	return res
}
