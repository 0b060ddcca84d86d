package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/cmd/server/internal/market"
	"github.com/hardoc15/Chalked/pkg/models"
)

type healthResponse struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Market    models.MarketHours `json:"market"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Market:    s.svc.MarketHours(),
	})
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: s.svc.MarketHours()})
}

func (s *Server) handleListProfessors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: s.svc.Professors()})
}

type professorDetail struct {
	Professor     models.Professor `json:"professor"`
	CanVote       bool             `json:"canVote"`
	UserVoteToday *models.Vote     `json:"userVoteToday"`
}

func (s *Server) handleGetProfessor(w http.ResponseWriter, r *http.Request) {
	professor, err := s.svc.Professor(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Professor not found")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: professorDetail{
		Professor: professor,
		CanVote:   s.svc.MarketHours().IsOpen,
		// Votes carry no identity, so there is never a per-user vote to report
		UserVoteToday: nil,
	}})
}

type voteRequest struct {
	VoteType string `json:"voteType"`
}

type voteResult struct {
	Vote      models.Vote      `json:"vote"`
	Professor models.Professor `json:"professor"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, `Invalid vote type. Must be "upvote" or "downvote".`)
		return
	}

	receipt, professor, err := s.svc.SubmitVote(r.Context(), r.PathValue("id"), req.VoteType)
	if err != nil {
		s.writeVoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    voteResult{Vote: *receipt, Professor: *professor},
		Message: fmt.Sprintf("Vote recorded! Professor %s's stock is now $%d", professor.Name, professor.CurrentStock),
	})
}

func (s *Server) writeVoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrMarketClosed):
		hours := s.svc.MarketHours()
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Market is closed. Voting hours are %s - %s.", hours.OpenTime, hours.CloseTime))
	case errors.Is(err, market.ErrInvalidVoteType):
		writeError(w, http.StatusBadRequest, `Invalid vote type. Must be "upvote" or "downvote".`)
	case errors.Is(err, market.ErrProfessorNotFound):
		writeError(w, http.StatusNotFound, "Professor not found")
	default:
		s.logger.Error("Vote failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
