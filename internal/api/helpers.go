package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		logger.FromContext(r.Context()).Debug("invalid request body: %v", err)
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseResultFilter reads mode, difficulty, limit and offset from the query.
func parseResultFilter(r *http.Request, playerID string) (models.ResultFilter, error) {
	q := r.URL.Query()
	filter := models.ResultFilter{PlayerID: playerID}

	if v := q.Get("mode"); v != "" {
		mode, err := models.ParseMode(v)
		if err != nil {
			return filter, errors.NewValidationError("mode", "must be 'input' or 'multiple-choice'")
		}
		filter.Mode = &mode
	}
	if v := q.Get("difficulty"); v != "" {
		d, err := models.ParseDifficulty(v)
		if err != nil {
			return filter, errors.NewValidationError("difficulty", "must be 'easy', 'medium', 'hard', or 'expert'")
		}
		filter.Difficulty = &d
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.NewValidationError("limit", "must be a non-negative integer")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.NewValidationError("offset", "must be a non-negative integer")
		}
		filter.Offset = n
	}
	return filter, nil
}
