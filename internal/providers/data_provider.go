// Package providers holds the briefing lookups. Each lookup calls one upstream
// endpoint and, instead of returning an error, falls back to a degraded value
// that the composer can merge unconditionally.
package providers

import (
	"context"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/upstream"
)

// Upstream is the subset of upstream.Client the lookups depend on.
type Upstream interface {
	GetJSON(ctx context.Context, endpoint string, result interface{}) (int, error)
	PostJSON(ctx context.Context, endpoint string, payload interface{}, result interface{}) (int, error)
}

var _ Upstream = (*upstream.Client)(nil)

// degraded logs a lookup failure and counts it.
func degraded(m *metrics.MetricsRegistry, source constants.LookupSource, key string, status int, err error) {
	logging.Warn("Lookup degraded",
		"source", string(source),
		"key", key,
		"status", status,
		"code", upstream.CodeOf(err),
		"error", err.Error(),
	)
	m.IncLookupDegraded(string(source))
}
