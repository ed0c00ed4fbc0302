package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"infinite-experiment/briefing/internal/constants"
	reqctx "infinite-experiment/briefing/internal/context"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/models/dtos"
	"infinite-experiment/briefing/internal/services"
	"infinite-experiment/briefing/internal/validation"
)

// MaxSubmissionBytes bounds the compose request body.
const MaxSubmissionBytes = 1 << 20

type Composer interface {
	Compose(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error)
}

var _ Composer = (*services.FplComposer)(nil)

// ComposeFplHandler handles POST /api/v1/fpl/compose
//
// @Summary Compose a flight plan briefing
// @Description Validates a flight plan and returns aerodrome, weather, NOTAM and ATS preview data for departure and destination.
// @Tags FPL
// @Accept json
// @Produce json
// @Success 200 {object} responses.APIResponse[dtos.ComposedBriefing]
// @Failure 400 {object} responses.APIResponse[any]
// @Failure 500 {object} responses.APIResponse[any]
// @Router /api/v1/fpl/compose [post]
func ComposeFplHandler(composer Composer, devMode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSubmissionBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				RespondWithError(w, http.StatusBadRequest, constants.ErrCodeValidationFailed,
					constants.GetErrorMessage(constants.ErrCodeValidationFailed),
					[]validation.FieldViolation{{
						Field:   "$",
						Rule:    "max_bytes",
						Message: fmt.Sprintf("request body must not exceed %d bytes", MaxSubmissionBytes),
					}})
				return
			}
			respondWithInternalError(w, r, err, devMode)
			return
		}

		briefing, err := composer.Compose(r.Context(), body)
		if err != nil {
			var vErr *validation.ValidationError
			if errors.As(err, &vErr) {
				logging.Debug("Rejected flight plan",
					"request_id", reqctx.GetRequestID(r.Context()),
					"violations", len(vErr.Violations),
				)
				RespondWithError(w, http.StatusBadRequest, vErr.Code(),
					constants.GetErrorMessage(constants.ErrCodeValidationFailed), vErr.Violations)
				return
			}
			respondWithInternalError(w, r, err, devMode)
			return
		}

		respondWithSuccess(w, http.StatusOK, briefing)
	}
}

// respondWithInternalError writes a 500. The error text is only exposed in
// development mode.
func respondWithInternalError(w http.ResponseWriter, r *http.Request, err error, devMode bool) {
	logging.Error("Unexpected error handling request",
		"request_id", reqctx.GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err.Error(),
	)

	var details any
	if devMode {
		details = err.Error()
	}
	RespondWithError(w, http.StatusInternalServerError, constants.ErrCodeInternal,
		constants.GetErrorMessage(constants.ErrCodeInternal), details)
}
