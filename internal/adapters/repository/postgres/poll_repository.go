package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/domain"
	"github.com/pollbox/pollbox/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, title, description, owner_id, is_active, allow_multiple_choices, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Title, poll.Description,
		poll.OwnerID, poll.IsActive, poll.AllowMultipleChoices, poll.CreatedAt, poll.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", mapError(err))
	}

	queryOption := `
		INSERT INTO poll_options (id, poll_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.PollID, opt.Text, opt.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", mapError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	queryPoll := `
		SELECT id, title, description, owner_id, is_active, allow_multiple_choices, total_votes, created_at, updated_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, queryPoll, id).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.OwnerID, &poll.IsActive,
		&poll.AllowMultipleChoices, &poll.TotalVotes, &poll.CreatedAt, &poll.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", mapError(err))
	}

	options, err := r.fetchOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return &poll, nil
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT id, title, description, owner_id, is_active, allow_multiple_choices, total_votes, created_at, updated_at
		FROM polls
		ORDER BY total_votes DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", mapError(err))
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) Search(ctx context.Context, limit, offset int, q string) ([]*domain.Poll, error) {
	query := `
		SELECT id, title, description, owner_id, is_active, allow_multiple_choices, total_votes, created_at, updated_at
		FROM polls
		WHERE title ILIKE $1
		ORDER BY total_votes DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, "%"+q+"%", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search polls: %w", mapError(err))
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	query := `
		UPDATE polls SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, poll.ID, poll.Title, poll.Description, poll.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", mapError(err))
	}
	return noneAffectedAsNotFound(res)
}

func (r *pollRepository) Close(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE polls SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", mapError(err))
	}
	return noneAffectedAsNotFound(res)
}

// Delete removes the poll; options and votes go with it via ON DELETE CASCADE.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", mapError(err))
	}
	return noneAffectedAsNotFound(res)
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		err := rows.Scan(&poll.ID, &poll.Title, &poll.Description, &poll.OwnerID, &poll.IsActive,
			&poll.AllowMultipleChoices, &poll.TotalVotes, &poll.CreatedAt, &poll.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}

		options, err := r.fetchOptions(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options

		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) fetchOptions(ctx context.Context, pollID uuid.UUID) ([]domain.PollOption, error) {
	queryOptions := `
		SELECT id, poll_id, text, vote_count, created_at
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", mapError(err))
	}
	defer rows.Close()

	var options []domain.PollOption
	for rows.Next() {
		var opt domain.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.VoteCount, &opt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

func noneAffectedAsNotFound(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}
