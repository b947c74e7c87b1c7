package http

import (
	"errors"
	"net/http"

	"github.com/pollbox/pollbox/internal/core/domain"
)

// writeDomainError maps the error taxonomy onto HTTP statuses. Every failure
// keeps its own message so callers can tell the cases apart.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPollID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrOptionNotInPoll):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrPollNotFound), errors.Is(err, domain.ErrVoteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrPollInactive):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, domain.ErrDuplicateVote), errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNotPollOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
