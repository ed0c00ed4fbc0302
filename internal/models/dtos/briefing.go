package dtos

import (
	"encoding/json"

	"infinite-experiment/briefing/internal/wx"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type SunTimes struct {
	Sunrise string `json:"sunrise,omitempty"`
	Sunset  string `json:"sunset,omitempty"`
}

// AerodromeRecord is the aerodrome metadata section of a briefing. Charts is
// never nil so it always serializes as a list.
type AerodromeRecord struct {
	ICAO      string            `json:"icao" msgpack:"icao"`
	Name      string            `json:"name,omitempty" msgpack:"name,omitempty"`
	Coord     *Coordinates      `json:"coord,omitempty" msgpack:"coord,omitempty"`
	Elevation *float64          `json:"elevation,omitempty" msgpack:"elevation,omitempty"`
	Charts    []json.RawMessage `json:"charts" msgpack:"charts"`
	Sun       *SunTimes         `json:"sun,omitempty" msgpack:"sun,omitempty"`
}

// PlaceholderAerodrome is the record returned when the aerodrome service
// cannot be reached.
func PlaceholderAerodrome(icao string) AerodromeRecord {
	return AerodromeRecord{ICAO: icao, Charts: []json.RawMessage{}}
}

type RawWeather struct {
	Metar     string `json:"metar,omitempty"`
	Taf       string `json:"taf,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type DecodedWeather struct {
	Metar *wx.Metar `json:"metar,omitempty"`
	Taf   *wx.Taf   `json:"taf,omitempty"`
}

type WeatherBundle struct {
	Raw     RawWeather     `json:"raw"`
	Decoded DecodedWeather `json:"decoded"`
}

type NotamRecord struct {
	ID   string `json:"id"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Text string `json:"text"`
}

// ComposedBriefing is the response of a composition. It is built once and
// not modified afterwards.
type ComposedBriefing struct {
	FlightPlan  *FlightPlanSubmission    `json:"fpl"`
	Departure   AerodromeRecord          `json:"origem"`
	Destination AerodromeRecord          `json:"destino"`
	Meteo       map[string]WeatherBundle `json:"meteo"`
	Notams      map[string][]NotamRecord `json:"notams"`
	AtsPreview  string                   `json:"atsPreview"`
}
