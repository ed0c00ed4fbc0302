package api

import (
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/briefing/internal/models/dtos/responses"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// RespondWithError writes the error envelope. details is omitted when nil.
func RespondWithError(w http.ResponseWriter, statusCode int, code, message string, details any) {
	resp := responses.APIResponse[any]{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Error: &responses.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}
