package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/pollbox/pollbox/internal/core/ports"
)

// voteRepository keeps the cached tallies (poll_options.vote_count,
// polls.total_votes) exactly equal to the live vote rows. Every mutation runs
// in one transaction that pairs the row change with relative count updates
// (votes = votes + 1), so concurrent casts on the same option never lose an
// increment and readers never observe counts out of step with the votes.
type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) Insert(ctx context.Context, vote *domain.Vote, singleChoice bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO votes (id, poll_id, option_id, voter_id, single_choice, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query, vote.ID, vote.PollID, vote.OptionID, vote.VoterID, singleChoice, vote.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	if err := adjustTallies(ctx, tx, vote.PollID, vote.OptionID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *voteRepository) Replace(ctx context.Context, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		DELETE FROM votes
		WHERE poll_id = $1 AND voter_id = $2
		RETURNING option_id
	`, vote.PollID, vote.VoterID)
	if err != nil {
		return mapError(err)
	}

	var removed []uuid.UUID
	for rows.Next() {
		var optionID uuid.UUID
		if err := rows.Scan(&optionID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan removed vote: %w", err)
		}
		removed = append(removed, optionID)
	}
	if err := rows.Close(); err != nil {
		return mapError(err)
	}

	for _, optionID := range removed {
		if err := adjustTallies(ctx, tx, vote.PollID, optionID, -1); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO votes (id, poll_id, option_id, voter_id, single_choice, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
	`
	_, err = tx.ExecContext(ctx, query, vote.ID, vote.PollID, vote.OptionID, vote.VoterID, vote.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	if err := adjustTallies(ctx, tx, vote.PollID, vote.OptionID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, pollID, optionID, voterID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM votes
		WHERE poll_id = $1 AND option_id = $2 AND voter_id = $3
	`, pollID, optionID, voterID)
	if err != nil {
		return mapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrVoteNotFound
	}

	if err := adjustTallies(ctx, tx, pollID, optionID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *voteRepository) VotesForVoter(ctx context.Context, pollID, voterID uuid.UUID) ([]*domain.Vote, error) {
	query := `
		SELECT id, poll_id, option_id, voter_id, created_at
		FROM votes
		WHERE poll_id = $1 AND voter_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, pollID, voterID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var votes []*domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.OptionID, &v.VoterID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

// adjustTallies applies a relative delta to the cached counts within the
// caller's transaction. Relative updates are required here: an absolute
// compute-then-write would lose concurrent increments.
func adjustTallies(ctx context.Context, tx *sql.Tx, pollID, optionID uuid.UUID, delta int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE poll_options SET vote_count = vote_count + $2 WHERE id = $1
	`, optionID, delta)
	if err != nil {
		return fmt.Errorf("failed to update option tally: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE polls SET total_votes = total_votes + $2 WHERE id = $1
	`, pollID, delta)
	if err != nil {
		return fmt.Errorf("failed to update poll tally: %w", err)
	}
	return nil
}
