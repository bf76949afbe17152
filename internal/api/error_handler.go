package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError writes err as the JSON error envelope.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	if err := json.NewEncoder(w).Encode(map[string]errorBody{
		"error": {Code: appErr.Code, Message: appErr.Message},
	}); err != nil {
		log.Error("failed to encode error response: %v", err)
	}
}
