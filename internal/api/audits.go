package api

import (
	"context"
	"net/http"
	"strconv"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/models/gorm"
	"infinite-experiment/briefing/internal/validation"
)

const (
	defaultAuditLimit = 20
	maxAuditLimit     = 100
)

type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]gorm.CompositionAudit, error)
}

type AuditListResponse struct {
	Audits []gorm.CompositionAudit `json:"audits"`
	Limit  int                     `json:"limit"`
}

// ListAuditsHandler handles GET /api/v1/fpl/audits
//
// @Summary List recent compositions
// @Tags FPL
// @Param limit query int false "Max rows (default 20, max 100)"
// @Success 200 {object} responses.APIResponse[AuditListResponse]
// @Router /api/v1/fpl/audits [get]
func ListAuditsHandler(lister AuditLister, devMode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultAuditLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxAuditLimit {
				RespondWithError(w, http.StatusBadRequest, constants.ErrCodeValidationFailed,
					"limit must be an integer between 1 and 100",
					[]validation.FieldViolation{{Field: "limit", Rule: "range", Message: "limit must be between 1 and 100"}})
				return
			}
			limit = n
		}

		audits, err := lister.ListRecent(r.Context(), limit)
		if err != nil {
			respondWithInternalError(w, r, err, devMode)
			return
		}

		respondWithSuccess(w, http.StatusOK, &AuditListResponse{Audits: audits, Limit: limit})
	}
}
