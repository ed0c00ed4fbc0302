package wx

import (
	"errors"
	"testing"
)

func TestParser_DecodeMETAR_Full(t *testing.T) {
	m, err := Parser{}.DecodeMETAR("METAR SBGR 011200Z 09010G20KT 060V120 9999 -RA FEW030 BKN100CB 25/M02 Q1015 NOSIG RMK AO2=")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if m.Station != "SBGR" || m.Kind != "METAR" {
		t.Errorf("Unexpected header %s %s", m.Kind, m.Station)
	}
	if m.ObservedAt != (ReportTime{Day: 1, Hour: 12, Minute: 0}) {
		t.Errorf("Unexpected observation time %+v", m.ObservedAt)
	}
	if m.Wind == nil || *m.Wind.DirectionDeg != 90 || m.Wind.Speed != 10 || *m.Wind.Gust != 20 || m.Wind.Unit != "KT" {
		t.Fatalf("Unexpected wind %+v", m.Wind)
	}
	if *m.Wind.VaryingFrom != 60 || *m.Wind.VaryingTo != 120 {
		t.Errorf("Unexpected variable sector %d-%d", *m.Wind.VaryingFrom, *m.Wind.VaryingTo)
	}
	if m.Visibility == nil || *m.Visibility.Meters != 9999 {
		t.Errorf("Unexpected visibility %+v", m.Visibility)
	}
	if len(m.Weather) != 1 || m.Weather[0] != "-RA" {
		t.Errorf("Unexpected weather %v", m.Weather)
	}
	if len(m.Clouds) != 2 || m.Clouds[1].Cover != "BKN" || *m.Clouds[1].BaseFt != 10000 || m.Clouds[1].Type != "CB" {
		t.Errorf("Unexpected clouds %+v", m.Clouds)
	}
	if ceil, ok := m.Ceiling(); !ok || ceil != 10000 {
		t.Errorf("Expected ceiling 10000, got %d (%v)", ceil, ok)
	}
	if *m.TemperatureC != 25 || *m.DewpointC != -2 {
		t.Errorf("Unexpected temperature %d/%d", *m.TemperatureC, *m.DewpointC)
	}
	if m.Altimeter == nil || m.Altimeter.Value != 1015 || m.Altimeter.Unit != "hPa" {
		t.Errorf("Unexpected altimeter %+v", m.Altimeter)
	}
	if m.Trend != "NOSIG" || m.Remarks != "AO2" {
		t.Errorf("Unexpected trend %q remarks %q", m.Trend, m.Remarks)
	}
	if len(m.Unparsed) != 0 {
		t.Errorf("Expected every group parsed, left %v", m.Unparsed)
	}
}

func TestParser_DecodeMETAR_StatuteMilesAndInHg(t *testing.T) {
	m, err := Parser{}.DecodeMETAR("KJFK 101751Z VRB03KT 1 1/2SM BR OVC008 M01/M03 A2992")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !m.Wind.Variable || m.Wind.DirectionDeg != nil {
		t.Errorf("Expected variable wind, got %+v", m.Wind)
	}
	if m.Visibility == nil || m.Visibility.StatuteMiles == nil || *m.Visibility.StatuteMiles != 1.5 {
		t.Errorf("Expected 1.5SM visibility, got %+v", m.Visibility)
	}
	if m.Altimeter.Unit != "inHg" || m.Altimeter.Value != 29.92 {
		t.Errorf("Unexpected altimeter %+v", m.Altimeter)
	}
	if hpa := m.Altimeter.Hectopascals(); hpa < 1013 || hpa > 1014 {
		t.Errorf("Expected ~1013 hPa, got %f", hpa)
	}
}

func TestParser_DecodeMETAR_CAVOKAndUnknownGroups(t *testing.T) {
	m, err := Parser{}.DecodeMETAR("SBSP 011200Z 00000KT CAVOK 22/12 Q1018 XYZZY")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !m.CAVOK || !m.Wind.Calm() {
		t.Errorf("Expected CAVOK and calm wind, got %+v", m.Conditions)
	}
	if len(m.Unparsed) != 1 || m.Unparsed[0] != "XYZZY" {
		t.Errorf("Expected unknown group kept, got %v", m.Unparsed)
	}
}

func TestParser_DecodeMETAR_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":        "   ",
		"bad station":  "METAR 12 011200Z 09010KT",
		"missing time": "METAR SBGR",
		"bad time":     "SBGR 011299Z 09010KT",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parser{}.DecodeMETAR(raw)
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("Expected DecodeError, got %v", err)
			}
			if decErr.Kind != "METAR" {
				t.Errorf("Expected METAR kind, got %s", decErr.Kind)
			}
		})
	}
}

func TestParser_DecodeTAF_ChangeGroups(t *testing.T) {
	raw := "TAF AMD SBGR 011100Z 0112/0212 09010KT 9999 SCT030 " +
		"BECMG 0118/0120 15005KT " +
		"TEMPO 0200/0206 3000 SHRA BKN015 " +
		"PROB30 TEMPO 0206/0210 TSRA FEW025CB " +
		"FM021000 18012KT CAVOK RMK PGY"

	tf, err := Parser{}.DecodeTAF(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tf.Station != "SBGR" || !tf.Amended {
		t.Errorf("Unexpected header %+v", tf)
	}
	if tf.Validity != (Period{FromDay: 1, FromHour: 12, ToDay: 2, ToHour: 12}) {
		t.Errorf("Unexpected validity %+v", tf.Validity)
	}
	if tf.Base.Wind == nil || tf.Base.Wind.Speed != 10 || len(tf.Base.Clouds) != 1 {
		t.Errorf("Unexpected base conditions %+v", tf.Base)
	}
	if len(tf.Changes) != 4 {
		t.Fatalf("Expected 4 change groups, got %d", len(tf.Changes))
	}

	becmg := tf.Changes[0]
	if becmg.Type != "BECMG" || becmg.Period == nil || becmg.Period.FromHour != 18 || becmg.Wind.Speed != 5 {
		t.Errorf("Unexpected BECMG group %+v", becmg)
	}
	tempo := tf.Changes[1]
	if tempo.Type != "TEMPO" || *tempo.Visibility.Meters != 3000 || tempo.Weather[0] != "SHRA" {
		t.Errorf("Unexpected TEMPO group %+v", tempo)
	}
	prob := tf.Changes[2]
	if prob.Type != "PROB" || prob.Probability != 30 || !prob.Tempo || prob.Clouds[0].Type != "CB" {
		t.Errorf("Unexpected PROB group %+v", prob)
	}
	fm := tf.Changes[3]
	if fm.Type != "FM" || fm.From == nil || fm.From.Day != 2 || fm.From.Hour != 10 || !fm.CAVOK {
		t.Errorf("Unexpected FM group %+v", fm)
	}
	if tf.Remarks != "PGY" {
		t.Errorf("Unexpected remarks %q", tf.Remarks)
	}
}

func TestParser_DecodeTAF_MissingValidity(t *testing.T) {
	_, err := Parser{}.DecodeTAF("TAF SBGR 011100Z")
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
}
