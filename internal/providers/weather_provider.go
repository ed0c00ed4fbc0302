package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/models/dtos"
	"infinite-experiment/briefing/internal/wx"
)

// WeatherProvider fetches raw METAR/TAF text and decodes it on a best-effort
// basis.
type WeatherProvider struct {
	upstream Upstream
	decoder  wx.Decoder
	metrics  *metrics.MetricsRegistry
}

func NewWeatherProvider(up Upstream, decoder wx.Decoder, m *metrics.MetricsRegistry) *WeatherProvider {
	if decoder == nil {
		decoder = wx.Parser{}
	}
	return &WeatherProvider{
		upstream: up,
		decoder:  decoder,
		metrics:  m,
	}
}

// Lookup returns the weather bundle for icao. An upstream failure yields an
// empty bundle with degraded set to true. METAR and TAF are decoded
// independently; a report that fails to decode is left out of Decoded only.
func (p *WeatherProvider) Lookup(ctx context.Context, icao string) (dtos.WeatherBundle, bool) {
	endpoint := fmt.Sprintf("/meteorologia/%s/briefing", url.PathEscape(icao))

	var raw dtos.RawWeather
	status, err := p.upstream.GetJSON(ctx, endpoint, &raw)
	if err != nil {
		degraded(p.metrics, constants.LookupWeather, icao, status, err)
		return dtos.WeatherBundle{}, true
	}

	bundle := dtos.WeatherBundle{Raw: raw}

	if text := strings.TrimSpace(raw.Metar); text != "" {
		if m, err := p.decoder.DecodeMETAR(text); err != nil {
			logging.Debug("METAR decode failed", "icao", icao, "code", constants.ErrCodeDecodeFailed, "error", err.Error())
		} else {
			bundle.Decoded.Metar = m
		}
	}

	if text := strings.TrimSpace(raw.Taf); text != "" {
		if t, err := p.decoder.DecodeTAF(text); err != nil {
			logging.Debug("TAF decode failed", "icao", icao, "code", constants.ErrCodeDecodeFailed, "error", err.Error())
		} else {
			bundle.Decoded.Taf = t
		}
	}

	return bundle, false
}
