package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"infinite-experiment/briefing/internal/models/dtos"
)

const validFPL = `{
	"mode": "PVC",
	"aircraftIdentification": "PTABC",
	"flightRules": "V",
	"flightType": "G",
	"aircraftType": "C172",
	"wakeTurbulenceCategory": "L",
	"equipmentCapability": {"V": true, "S": false},
	"surveillanceEquipment": {"C": true},
	"departure": {"icao": "SBGR", "timeUTC": "1200"},
	"cruise": {"speed": "N0110", "level": "F055", "route": "DCT"},
	"destination": {"icao": "SBSP", "totalEET": "0030", "alternate1": "SBKP"},
	"other": {"dof": "20250101"},
	"supplementary": {
		"endurance": "0400",
		"personsOnBoard": 0,
		"emergencyRadio": {"elt": true},
		"aircraftColorMarkings": "WHITE BLUE STRIPES",
		"pilotInCommand": "J SILVA",
		"license1": "PPA12345"
	}
}`

func validSubmission(t *testing.T) *dtos.FlightPlanSubmission {
	t.Helper()
	var sub dtos.FlightPlanSubmission
	if err := json.Unmarshal([]byte(validFPL), &sub); err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}
	return &sub
}

func requireViolations(t *testing.T, err error) *ValidationError {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	return vErr
}

func TestFieldValidator_Validate_Valid(t *testing.T) {
	if err := New().Validate(validSubmission(t)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestFieldValidator_Validate_SingleFieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *dtos.FlightPlanSubmission)
		field  string
		rule   string
	}{
		{"lowercase departure icao", func(s *dtos.FlightPlanSubmission) { s.Departure.ICAO = "abcd" }, "departure.icao", "icao"},
		{"unknown mode", func(s *dtos.FlightPlanSubmission) { s.Mode = "PVX" }, "mode", "oneof"},
		{"short identification", func(s *dtos.FlightPlanSubmission) { s.AircraftIdentification = "P" }, "aircraftIdentification", "min"},
		{"bad flight rules", func(s *dtos.FlightPlanSubmission) { s.FlightRules = "IFR" }, "flightRules", "oneof"},
		{"zero aircraft count", func(s *dtos.FlightPlanSubmission) { n := 0; s.AircraftCount = &n }, "aircraftCount", "gte"},
		{"hour out of range", func(s *dtos.FlightPlanSubmission) { s.Departure.TimeUTC = "2460" }, "departure.timeUTC", "hhmm"},
		{"eet minutes out of range", func(s *dtos.FlightPlanSubmission) { s.Destination.TotalEET = "0075" }, "destination.totalEET", "duration_hhmm"},
		{"speed pattern", func(s *dtos.FlightPlanSubmission) { s.Cruise.Speed = "K0200" }, "cruise.speed", "cruise_speed"},
		{"level pattern", func(s *dtos.FlightPlanSubmission) { s.Cruise.Level = "A045" }, "cruise.level", "cruise_level"},
		{"blank route", func(s *dtos.FlightPlanSubmission) { s.Cruise.Route = "   " }, "cruise.route", "notblank"},
		{"impossible date", func(s *dtos.FlightPlanSubmission) { s.Other.DateOfFlight = "20250231" }, "other.dof", "dof"},
		{"bad alternate", func(s *dtos.FlightPlanSubmission) { s.Destination.Alternate2 = "SB1" }, "destination.alternate2", "icao"},
		{"bad capability code", func(s *dtos.FlightPlanSubmission) { s.EquipmentCapability["xx"] = true }, "equipmentCapability", "capability_codes"},
		{"missing persons on board", func(s *dtos.FlightPlanSubmission) { s.Supplementary.PersonsOnBoard = nil }, "supplementary.personsOnBoard", "required"},
		{"bad license", func(s *dtos.FlightPlanSubmission) { s.Supplementary.License2 = "a" }, "supplementary.license2", "license"},
		{"bad dinghy count", func(s *dtos.FlightPlanSubmission) { s.Supplementary.Dinghies = &dtos.Dinghies{Number: -1} }, "supplementary.dinghies.number", "gte"},
	}

	v := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission(t)
			tc.mutate(sub)

			vErr := requireViolations(t, v.Validate(sub))
			if len(vErr.Violations) != 1 {
				t.Fatalf("Expected exactly 1 violation, got %+v", vErr.Violations)
			}
			got := vErr.Violations[0]
			if got.Field != tc.field || got.Rule != tc.rule {
				t.Errorf("Expected %s/%s, got %s/%s", tc.field, tc.rule, got.Field, got.Rule)
			}
			if got.Message == "" {
				t.Error("Expected a message")
			}
		})
	}
}

func TestFieldValidator_Validate_ListsEveryViolation(t *testing.T) {
	sub := validSubmission(t)
	sub.Departure.ICAO = "abcd"
	sub.Destination.ICAO = ""
	sub.Other.DateOfFlight = "2025-01-01"

	vErr := requireViolations(t, New().Validate(sub))
	if len(vErr.Violations) != 3 {
		t.Fatalf("Expected 3 violations, got %+v", vErr.Violations)
	}
	for _, field := range []string{"departure.icao", "destination.icao", "other.dof"} {
		if !vErr.Has(field) {
			t.Errorf("Expected violation for %s", field)
		}
	}
	// sorted by field path
	if vErr.Violations[0].Field != "departure.icao" || vErr.Violations[2].Field != "other.dof" {
		t.Errorf("Expected violations sorted by field, got %+v", vErr.Violations)
	}
}

func TestFieldValidator_DecodeAndValidate(t *testing.T) {
	v := New()

	sub, err := v.DecodeAndValidate([]byte(validFPL))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if sub.Departure.ICAO != "SBGR" || *sub.Supplementary.PersonsOnBoard != 0 {
		t.Errorf("Unexpected decoded submission %+v", sub)
	}

	_, err = v.DecodeAndValidate([]byte(`{"mode": `))
	vErr := requireViolations(t, err)
	if vErr.Violations[0].Field != "$" || vErr.Violations[0].Rule != "json" {
		t.Errorf("Expected syntax violation on $, got %+v", vErr.Violations)
	}

	_, err = v.DecodeAndValidate([]byte(`{"departure": {"icao": 1234}}`))
	vErr = requireViolations(t, err)
	if rules := rulesFor(vErr, "departure.icao"); len(rules) != 1 || rules[0] != "json" {
		t.Errorf("Expected only a type violation on departure.icao, got %v", rules)
	}
	if !vErr.Has("mode") {
		t.Errorf("Expected missing fields to be reported alongside the type error, got %+v", vErr.Violations)
	}

	_, err = v.DecodeAndValidate([]byte(`[]`))
	vErr = requireViolations(t, err)
	if len(vErr.Violations) != 1 || vErr.Violations[0].Field != "$" {
		t.Errorf("Expected a single $ violation for a non-object body, got %+v", vErr.Violations)
	}

	_, err = v.DecodeAndValidate([]byte(validFPL + `{}`))
	requireViolations(t, err)
}

func rulesFor(vErr *ValidationError, field string) []string {
	var rules []string
	for _, v := range vErr.Violations {
		if v.Field == field {
			rules = append(rules, v.Rule)
		}
	}
	return rules
}

func TestFieldValidator_DecodeAndValidate_TypeAndGrammarErrors(t *testing.T) {
	raw := strings.Replace(validFPL, `"personsOnBoard": 0`, `"personsOnBoard": "zero"`, 1)
	raw = strings.Replace(raw, `"icao": "SBGR"`, `"icao": "abcd"`, 1)
	raw = strings.Replace(raw, `"endurance": "0400"`, `"endurance": 400`, 1)

	_, err := New().DecodeAndValidate([]byte(raw))
	vErr := requireViolations(t, err)

	want := map[string]string{
		"departure.icao":               "icao",
		"supplementary.endurance":      "json",
		"supplementary.personsOnBoard": "json",
	}
	if len(vErr.Violations) != len(want) {
		t.Fatalf("Expected %d violations, got %+v", len(want), vErr.Violations)
	}
	for field, rule := range want {
		if rules := rulesFor(vErr, field); len(rules) != 1 || rules[0] != rule {
			t.Errorf("Expected %s to fail %s, got %v", field, rule, rules)
		}
	}
	if vErr.Violations[0].Field != "departure.icao" {
		t.Errorf("Expected violations sorted by field, got %+v", vErr.Violations)
	}
}

func TestFieldValidator_DecodeAndValidate_WrongSectionType(t *testing.T) {
	raw := strings.Replace(validFPL, `"other": {"dof": "20250101"}`, `"other": "20250101"`, 1)

	_, err := New().DecodeAndValidate([]byte(raw))
	vErr := requireViolations(t, err)

	if len(vErr.Violations) != 1 || vErr.Violations[0].Field != "other" || vErr.Violations[0].Rule != "json" {
		t.Errorf("Expected one type violation on other, got %+v", vErr.Violations)
	}
}

func TestFieldValidator_Validate_Nil(t *testing.T) {
	vErr := requireViolations(t, Default().Validate(nil))
	if vErr.Violations[0].Field != "$" {
		t.Errorf("Expected $ violation, got %+v", vErr.Violations)
	}
}
