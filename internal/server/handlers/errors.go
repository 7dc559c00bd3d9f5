// Writes structured error responses for raw handlers.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/signum-hq/signum/internal/server/dto"
)

// writeErrorResponse writes err as a dto.ErrorResponse. Errors without a
// status are reported as 500.
func writeErrorResponse(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	code := dto.ErrorCodeInternal
	var details map[string]any
	var ews dto.ErrorWithStatus
	if errors.As(err, &ews) {
		statusCode = ews.StatusCode()
		code = ews.Code()
		details = ews.Details()
	}
	if len(details) == 0 {
		details = nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := dto.ErrorResponse{Error: dto.ErrorDetails{Code: code, Message: err.Error()}, Details: details}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "err", err)
	}
}
