package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pollbox/pollbox/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	voterID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	vote, err := h.service.Cast(r.Context(), ports.CastVoteInput{
		PollID:   pollID,
		OptionID: req.OptionID,
		VoterID:  voterID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(vote); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *VoteHandler) RetractVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	optionID, err := uuid.Parse(chi.URLParam(r, "optionID"))
	if err != nil {
		http.Error(w, "invalid option id", http.StatusBadRequest)
		return
	}

	voterID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	if err := h.service.Retract(r.Context(), pollID, optionID, voterID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	voterID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	votes, err := h.service.MyVotes(r.Context(), pollID, voterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(votes) == 0 {
		http.Error(w, "no votes on this poll", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(votes); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
