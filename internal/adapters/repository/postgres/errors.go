package postgres

import (
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
	"github.com/pollbox/pollbox/internal/core/domain"
)

// mapError translates driver errors into the domain taxonomy so the services
// never depend on lib/pq.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return domain.ErrDuplicateVote
		case "23503": // foreign_key_violation
			return domain.ErrOptionNotInPoll
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return domain.ErrConflict
		}
		if strings.HasPrefix(string(pqErr.Code), "08") { // connection_exception
			return domain.ErrStoreUnavailable
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, sql.ErrConnDone) {
		return domain.ErrStoreUnavailable
	}

	return err
}
