package api

import (
	"net/http"

	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/services"
)

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	view := s.GameService.Current(r.Context(), playerFromContext(r.Context()))
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req services.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.GameService.Start(r.Context(), playerFromContext(r.Context()), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// handleSetAnswer stores the text the player is typing.
func (s *Server) handleSetAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.GameService.SetAnswer(r.Context(), playerFromContext(r.Context()), req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// handleSubmitAnswer submits the body's answer, or the stored text when the
// body has none.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, out, err := s.GameService.SubmitAnswer(r.Context(), playerFromContext(r.Context()), req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, actionResponse{View: view, Outcome: out})
}

type choiceRequest struct {
	Value *int `json:"value"`
}

func (s *Server) handleSubmitChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Value == nil {
		handleError(w, r, errors.NewValidationError("value", "is required"))
		return
	}

	view, out, err := s.GameService.SubmitChoice(r.Context(), playerFromContext(r.Context()), *req.Value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, actionResponse{View: view, Outcome: out})
}

func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	view := s.GameService.Reset(r.Context(), playerFromContext(r.Context()))
	writeJSON(w, r, http.StatusOK, view)
}
