// Package wx decodes METAR and TAF reports into structured form.
//
// Decoding is best effort: groups that are not understood are kept verbatim in
// Unparsed instead of failing the report. Only a missing or malformed station
// identifier or report time is an error.
package wx

import (
	"fmt"
	"strconv"
)

// Decoder turns raw report text into structured reports.
type Decoder interface {
	DecodeMETAR(raw string) (*Metar, error)
	DecodeTAF(raw string) (*Taf, error)
}

// DecodeError reports a report that could not be decoded.
type DecodeError struct {
	Kind   string // "METAR" or "TAF"
	Group  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("decode %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("decode %s: %s %q", e.Kind, e.Reason, e.Group)
}

// ReportTime is a day-of-month plus UTC time as encoded in ddhhmmZ groups.
type ReportTime struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t ReportTime) String() string {
	return fmt.Sprintf("%02d%02d%02dZ", t.Day, t.Hour, t.Minute)
}

// Period is a TAF validity window in ddhh/ddhh form. ToHour may be 24.
type Period struct {
	FromDay  int `json:"fromDay"`
	FromHour int `json:"fromHour"`
	ToDay    int `json:"toDay"`
	ToHour   int `json:"toHour"`
}

type Wind struct {
	DirectionDeg *int   `json:"directionDeg,omitempty"` // nil when variable
	Variable     bool   `json:"variable,omitempty"`
	Speed        int    `json:"speed"`
	Gust         *int   `json:"gust,omitempty"`
	Unit         string `json:"unit"` // KT, MPS or KMH
	VaryingFrom  *int   `json:"varyingFrom,omitempty"`
	VaryingTo    *int   `json:"varyingTo,omitempty"`
}

// Calm reports a 00000 wind group.
func (w *Wind) Calm() bool {
	return w != nil && w.Speed == 0 && w.DirectionDeg != nil && *w.DirectionDeg == 0
}

type Visibility struct {
	Meters       *int     `json:"meters,omitempty"`
	StatuteMiles *float64 `json:"statuteMiles,omitempty"`
	LessThan     bool     `json:"lessThan,omitempty"`
}

type CloudLayer struct {
	Cover  string `json:"cover"`            // FEW, SCT, BKN, OVC
	BaseFt *int   `json:"baseFt,omitempty"` // nil when reported as ///
	Type   string `json:"type,omitempty"`   // CB or TCU
}

type Pressure struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // hPa or inHg
}

// Hectopascals returns the pressure in hPa regardless of the reported unit.
func (p Pressure) Hectopascals() float64 {
	if p.Unit == "inHg" {
		return p.Value * 33.8639
	}
	return p.Value
}

// Conditions are the groups shared by METAR bodies and TAF forecast groups.
type Conditions struct {
	Wind                 *Wind        `json:"wind,omitempty"`
	Visibility           *Visibility  `json:"visibility,omitempty"`
	CAVOK                bool         `json:"cavok,omitempty"`
	Weather              []string     `json:"weather,omitempty"`
	Clouds               []CloudLayer `json:"clouds,omitempty"`
	NoSignificantCloud   bool         `json:"noSignificantCloud,omitempty"`
	VerticalVisibilityFt *int         `json:"verticalVisibilityFt,omitempty"`
}

// Ceiling returns the lowest BKN/OVC layer or vertical visibility in feet.
func (c Conditions) Ceiling() (int, bool) {
	if c.VerticalVisibilityFt != nil {
		return *c.VerticalVisibilityFt, true
	}
	for _, l := range c.Clouds {
		if (l.Cover == "BKN" || l.Cover == "OVC") && l.BaseFt != nil {
			return *l.BaseFt, true
		}
	}
	return 0, false
}

type Metar struct {
	Station    string     `json:"station"`
	Kind       string     `json:"kind"` // METAR or SPECI
	Corrected  bool       `json:"corrected,omitempty"`
	Auto       bool       `json:"auto,omitempty"`
	ObservedAt ReportTime `json:"observedAt"`
	Conditions
	RunwayVisualRange []string  `json:"runwayVisualRange,omitempty"`
	TemperatureC      *int      `json:"temperatureC,omitempty"`
	DewpointC         *int      `json:"dewpointC,omitempty"`
	Altimeter         *Pressure `json:"altimeter,omitempty"`
	Trend             string    `json:"trend,omitempty"`
	Remarks           string    `json:"remarks,omitempty"`
	Unparsed          []string  `json:"unparsed,omitempty"`
}

type ChangeGroup struct {
	Type        string      `json:"type"` // FM, BECMG, TEMPO or PROB
	Probability int         `json:"probability,omitempty"`
	Tempo       bool        `json:"tempo,omitempty"` // PROBnn TEMPO
	From        *ReportTime `json:"from,omitempty"`  // FM groups
	Period      *Period     `json:"period,omitempty"`
	Conditions
}

type Taf struct {
	Station   string        `json:"station"`
	Amended   bool          `json:"amended,omitempty"`
	Corrected bool          `json:"corrected,omitempty"`
	IssuedAt  ReportTime    `json:"issuedAt"`
	Validity  Period        `json:"validity"`
	Base      Conditions    `json:"base"`
	Changes   []ChangeGroup `json:"changes,omitempty"`
	Remarks   string        `json:"remarks,omitempty"`
	Unparsed  []string      `json:"unparsed,omitempty"`
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func intPtr(n int) *int { return &n }
