package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/models/dtos"
	"infinite-experiment/briefing/internal/upstream"
)

// NotamProvider fetches the active NOTAMs of an aerodrome.
type NotamProvider struct {
	upstream Upstream
	metrics  *metrics.MetricsRegistry
}

func NewNotamProvider(up Upstream, m *metrics.MetricsRegistry) *NotamProvider {
	return &NotamProvider{upstream: up, metrics: m}
}

// Lookup returns the NOTAMs for icao in upstream order. The result is never
// nil; failures yield an empty list with degraded set to true.
func (p *NotamProvider) Lookup(ctx context.Context, icao string) ([]dtos.NotamRecord, bool) {
	endpoint := fmt.Sprintf("/ais/%s/notams", url.PathEscape(icao))

	var raw json.RawMessage
	status, err := p.upstream.GetJSON(ctx, endpoint, &raw)
	if err == nil {
		var notams []dtos.NotamRecord
		if notams, err = normalizeNotams(raw); err == nil {
			return notams, false
		}
		err = &upstream.Error{
			Code:     constants.ErrCodeInvalidDataFormat,
			Message:  "Unexpected NOTAM response shape",
			Endpoint: endpoint,
			Status:   status,
			Err:      err,
		}
	}

	degraded(p.metrics, constants.LookupNotam, icao, status, err)
	return []dtos.NotamRecord{}, true
}

// normalizeNotams accepts either a bare array or an object with a notams
// array.
func normalizeNotams(raw json.RawMessage) ([]dtos.NotamRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	notams := []dtos.NotamRecord{}

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return notams, nil
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &notams); err != nil {
			return nil, err
		}
	case '{':
		var wrapped struct {
			Notams []dtos.NotamRecord `json:"notams"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Notams != nil {
			notams = wrapped.Notams
		}
	default:
		return nil, errors.New("expected array or object")
	}

	if notams == nil {
		notams = []dtos.NotamRecord{}
	}
	return notams, nil
}
