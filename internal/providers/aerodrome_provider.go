package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"infinite-experiment/briefing/internal/cache"
	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/models/dtos"
)

// aerodromePayload is the aerodrome service response.
type aerodromePayload struct {
	Nome   string            `json:"nome"`
	Coord  *dtos.Coordinates `json:"coord"`
	Elev   *float64          `json:"elev"`
	Cartas []json.RawMessage `json:"cartas"`
	Sun    *dtos.SunTimes    `json:"sun"`
}

// AerodromeProvider looks up aerodrome metadata for a date of flight, caching
// successful responses for ttl.
type AerodromeProvider struct {
	upstream Upstream
	cache    *cache.TimedCache[dtos.AerodromeRecord]
	ttl      time.Duration
	metrics  *metrics.MetricsRegistry
}

// NewAerodromeProvider creates the lookup. A nil cache disables caching.
func NewAerodromeProvider(up Upstream, c *cache.TimedCache[dtos.AerodromeRecord], ttl time.Duration, m *metrics.MetricsRegistry) *AerodromeProvider {
	return &AerodromeProvider{
		upstream: up,
		cache:    c,
		ttl:      ttl,
		metrics:  m,
	}
}

// Lookup returns the aerodrome record for icao on dof. When the service fails
// it returns a placeholder with no charts and degraded set to true.
// Placeholders are never cached.
func (p *AerodromeProvider) Lookup(ctx context.Context, icao, dof string) (dtos.AerodromeRecord, bool) {
	key := icao + ":" + dof

	if p.cache != nil {
		if rec, ok := p.cache.GetFresh(ctx, key, p.ttl); ok {
			if rec.Charts == nil {
				rec.Charts = []json.RawMessage{}
			}
			logging.Debug("Aerodrome cache hit", "key", key)
			return rec, false
		}
	}

	endpoint := fmt.Sprintf("/aerodromos/%s?dof=%s", url.PathEscape(icao), url.QueryEscape(dof))

	var payload aerodromePayload
	status, err := p.upstream.GetJSON(ctx, endpoint, &payload)
	if err != nil {
		degraded(p.metrics, constants.LookupAerodrome, icao, status, err)
		return dtos.PlaceholderAerodrome(icao), true
	}

	rec := dtos.AerodromeRecord{
		ICAO:      icao,
		Name:      payload.Nome,
		Coord:     payload.Coord,
		Elevation: payload.Elev,
		Charts:    payload.Cartas,
		Sun:       payload.Sun,
	}
	if rec.Charts == nil {
		rec.Charts = []json.RawMessage{}
	}

	if p.cache != nil {
		p.cache.Put(ctx, key, rec)
	}
	return rec, false
}
