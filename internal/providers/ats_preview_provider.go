package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/models/dtos"
	"infinite-experiment/briefing/internal/upstream"
)

const atsPreviewEndpoint = "/fpl/preview"

// AtsPreviewProvider asks the ATS rendering service for the message text of
// a submission.
type AtsPreviewProvider struct {
	upstream Upstream
	metrics  *metrics.MetricsRegistry
}

func NewAtsPreviewProvider(up Upstream, m *metrics.MetricsRegistry) *AtsPreviewProvider {
	return &AtsPreviewProvider{upstream: up, metrics: m}
}

// Preview returns the rendered ATS message, or constants.AtsPreviewUnavailable
// with degraded set to true when rendering fails.
func (p *AtsPreviewProvider) Preview(ctx context.Context, sub *dtos.FlightPlanSubmission) (string, bool) {
	var raw json.RawMessage
	status, err := p.upstream.PostJSON(ctx, atsPreviewEndpoint, sub, &raw)
	if err == nil {
		var text string
		if text, err = parseAtsPreview(raw); err == nil {
			return text, false
		}
		err = &upstream.Error{
			Code:     constants.ErrCodeInvalidDataFormat,
			Message:  "Unexpected ATS preview response shape",
			Endpoint: atsPreviewEndpoint,
			Status:   status,
			Err:      err,
		}
	}

	degraded(p.metrics, constants.LookupAtsPreview, sub.Departure.ICAO+"-"+sub.Destination.ICAO, status, err)
	return constants.AtsPreviewUnavailable, true
}

// parseAtsPreview accepts either {"ats": "..."} or a bare JSON string. A
// blank message counts as a failed rendering.
func parseAtsPreview(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", errors.New("empty response")
	}

	var text string
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", err
		}
	case '{':
		var wrapped struct {
			Ats *string `json:"ats"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return "", err
		}
		if wrapped.Ats == nil {
			return "", errors.New("missing ats field")
		}
		text = *wrapped.Ats
	default:
		return "", errors.New("expected string or object")
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty ats message")
	}
	return text, nil
}
