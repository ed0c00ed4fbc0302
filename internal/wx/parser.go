package wx

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	stationRe   = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
	timeRe      = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})Z$`)
	periodRe    = regexp.MustCompile(`^(\d{2})(\d{2})/(\d{2})(\d{2})$`)
	fromRe      = regexp.MustCompile(`^FM(\d{2})(\d{2})(\d{2})$`)
	probRe      = regexp.MustCompile(`^PROB(30|40)$`)
	windRe      = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?(KT|MPS|KMH)$`)
	windVarRe   = regexp.MustCompile(`^(\d{3})V(\d{3})$`)
	visMetersRe = regexp.MustCompile(`^(\d{4})(?:NDV)?$`)
	visMilesRe  = regexp.MustCompile(`^(M|P)?(\d{1,2})?(?:(\d)/(\d{1,2}))?SM$`)
	rvrRe       = regexp.MustCompile(`^R\d{2}[LCR]?/[PM]?\d{4}(?:V[PM]?\d{4})?(?:FT)?[UDN]?$`)
	weatherRe   = regexp.MustCompile(`^(?:\+|-|VC)?(?:MI|PR|BC|DR|BL|SH|TS|FZ)?(?:DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*$`)
	cloudRe     = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3}|///)(CB|TCU|///)?$`)
	vvRe        = regexp.MustCompile(`^VV(\d{3}|///)$`)
	tempRe      = regexp.MustCompile(`^(M?\d{2})/(M?\d{2})?$`)
	qnhRe       = regexp.MustCompile(`^([QA])(\d{4})$`)
)

// Parser is the default Decoder. The zero value is ready to use.
type Parser struct{}

var _ Decoder = Parser{}

// DecodeMETAR decodes a METAR or SPECI report.
func (Parser) DecodeMETAR(raw string) (*Metar, error) {
	fields := tokenize(raw)
	if len(fields) == 0 {
		return nil, &DecodeError{Kind: "METAR", Reason: "empty report"}
	}

	m := &Metar{Kind: "METAR"}
	i := 0
	if fields[i] == "METAR" || fields[i] == "SPECI" {
		m.Kind = fields[i]
		i++
	}
	if i < len(fields) && fields[i] == "COR" {
		m.Corrected = true
		i++
	}

	station, err := parseStation("METAR", fields, i)
	if err != nil {
		return nil, err
	}
	m.Station = station
	i++

	t, err := parseReportTime("METAR", fields, i)
	if err != nil {
		return nil, err
	}
	m.ObservedAt = t
	i++

	for ; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case tok == "AUTO":
			m.Auto = true
		case tok == "COR":
			m.Corrected = true
		case tok == "RMK":
			m.Remarks = strings.Join(fields[i+1:], " ")
			return m, nil
		case tok == "NOSIG" || tok == "BECMG" || tok == "TEMPO":
			end := len(fields)
			for j := i; j < len(fields); j++ {
				if fields[j] == "RMK" {
					end = j
					m.Remarks = strings.Join(fields[j+1:], " ")
					break
				}
			}
			m.Trend = strings.Join(fields[i:end], " ")
			return m, nil
		case rvrRe.MatchString(tok):
			m.RunwayVisualRange = append(m.RunwayVisualRange, tok)
		case tempRe.MatchString(tok):
			sm := tempRe.FindStringSubmatch(tok)
			m.TemperatureC = intPtr(signedTemp(sm[1]))
			if sm[2] != "" {
				m.DewpointC = intPtr(signedTemp(sm[2]))
			}
		case qnhRe.MatchString(tok):
			sm := qnhRe.FindStringSubmatch(tok)
			if sm[1] == "Q" {
				m.Altimeter = &Pressure{Value: float64(atoi(sm[2])), Unit: "hPa"}
			} else {
				m.Altimeter = &Pressure{Value: float64(atoi(sm[2])) / 100, Unit: "inHg"}
			}
		default:
			used := m.Conditions.consume(fields, i)
			if used == 0 {
				m.Unparsed = append(m.Unparsed, tok)
				continue
			}
			i += used - 1
		}
	}

	return m, nil
}

// DecodeTAF decodes a terminal aerodrome forecast.
func (Parser) DecodeTAF(raw string) (*Taf, error) {
	fields := tokenize(raw)
	if len(fields) == 0 {
		return nil, &DecodeError{Kind: "TAF", Reason: "empty report"}
	}

	t := &Taf{}
	i := 0
	if fields[i] == "TAF" {
		i++
	}
	for i < len(fields) && (fields[i] == "AMD" || fields[i] == "COR") {
		if fields[i] == "AMD" {
			t.Amended = true
		} else {
			t.Corrected = true
		}
		i++
	}

	station, err := parseStation("TAF", fields, i)
	if err != nil {
		return nil, err
	}
	t.Station = station
	i++

	issued, err := parseReportTime("TAF", fields, i)
	if err != nil {
		return nil, err
	}
	t.IssuedAt = issued
	i++

	if i >= len(fields) {
		return nil, &DecodeError{Kind: "TAF", Reason: "missing validity period"}
	}
	validity, ok := parsePeriod(fields[i])
	if !ok {
		return nil, &DecodeError{Kind: "TAF", Group: fields[i], Reason: "invalid validity period"}
	}
	t.Validity = validity
	i++

	current := &t.Base
	for ; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case tok == "RMK":
			t.Remarks = strings.Join(fields[i+1:], " ")
			return t, nil
		case fromRe.MatchString(tok):
			sm := fromRe.FindStringSubmatch(tok)
			from := ReportTime{Day: atoi(sm[1]), Hour: atoi(sm[2]), Minute: atoi(sm[3])}
			t.Changes = append(t.Changes, ChangeGroup{Type: "FM", From: &from})
			current = &t.Changes[len(t.Changes)-1].Conditions
		case tok == "BECMG" || tok == "TEMPO":
			g := ChangeGroup{Type: tok}
			if i+1 < len(fields) {
				if p, ok := parsePeriod(fields[i+1]); ok {
					g.Period = &p
					i++
				}
			}
			t.Changes = append(t.Changes, g)
			current = &t.Changes[len(t.Changes)-1].Conditions
		case probRe.MatchString(tok):
			g := ChangeGroup{Type: "PROB", Probability: atoi(probRe.FindStringSubmatch(tok)[1])}
			if i+1 < len(fields) && fields[i+1] == "TEMPO" {
				g.Tempo = true
				i++
			}
			if i+1 < len(fields) {
				if p, ok := parsePeriod(fields[i+1]); ok {
					g.Period = &p
					i++
				}
			}
			t.Changes = append(t.Changes, g)
			current = &t.Changes[len(t.Changes)-1].Conditions
		default:
			used := current.consume(fields, i)
			if used == 0 {
				t.Unparsed = append(t.Unparsed, tok)
				continue
			}
			i += used - 1
		}
	}

	return t, nil
}

// consume decodes the condition group starting at fields[i] and returns how
// many fields it used, or 0 when fields[i] is not a condition group.
func (c *Conditions) consume(fields []string, i int) int {
	tok := fields[i]

	switch {
	case tok == "CAVOK":
		c.CAVOK = true
		return 1
	case tok == "NSC" || tok == "SKC" || tok == "CLR" || tok == "NCD":
		c.NoSignificantCloud = true
		return 1
	case tok == "NSW":
		c.Weather = append(c.Weather, tok)
		return 1
	case windRe.MatchString(tok):
		sm := windRe.FindStringSubmatch(tok)
		w := &Wind{Speed: atoi(sm[2]), Unit: sm[4]}
		if sm[1] == "VRB" {
			w.Variable = true
		} else {
			w.DirectionDeg = intPtr(atoi(sm[1]))
		}
		if sm[3] != "" {
			w.Gust = intPtr(atoi(sm[3]))
		}
		c.Wind = w
		return 1
	case windVarRe.MatchString(tok) && c.Wind != nil:
		sm := windVarRe.FindStringSubmatch(tok)
		c.Wind.VaryingFrom = intPtr(atoi(sm[1]))
		c.Wind.VaryingTo = intPtr(atoi(sm[2]))
		return 1
	case visMetersRe.MatchString(tok) && c.Visibility == nil:
		c.Visibility = &Visibility{Meters: intPtr(atoi(visMetersRe.FindStringSubmatch(tok)[1]))}
		return 1
	case isWholeMiles(tok) && i+1 < len(fields) && visMilesRe.MatchString(fields[i+1]):
		// "1 1/2SM"
		if v, ok := parseMiles(fields[i+1]); ok {
			whole, _ := strconv.ParseFloat(tok, 64)
			*v.StatuteMiles += whole
			c.Visibility = v
			return 2
		}
	case visMilesRe.MatchString(tok):
		if v, ok := parseMiles(tok); ok {
			c.Visibility = v
			return 1
		}
	case cloudRe.MatchString(tok):
		sm := cloudRe.FindStringSubmatch(tok)
		layer := CloudLayer{Cover: sm[1]}
		if sm[2] != "///" {
			layer.BaseFt = intPtr(atoi(sm[2]) * 100)
		}
		if sm[3] != "///" {
			layer.Type = sm[3]
		}
		c.Clouds = append(c.Clouds, layer)
		return 1
	case vvRe.MatchString(tok):
		if h := vvRe.FindStringSubmatch(tok)[1]; h != "///" {
			c.VerticalVisibilityFt = intPtr(atoi(h) * 100)
		}
		return 1
	case tok != "" && weatherRe.MatchString(tok):
		c.Weather = append(c.Weather, tok)
		return 1
	}
	return 0
}

func tokenize(raw string) []string {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "="))
	return strings.Fields(strings.ToUpper(raw))
}

func parseStation(kind string, fields []string, i int) (string, error) {
	if i >= len(fields) {
		return "", &DecodeError{Kind: kind, Reason: "missing station identifier"}
	}
	if !stationRe.MatchString(fields[i]) {
		return "", &DecodeError{Kind: kind, Group: fields[i], Reason: "invalid station identifier"}
	}
	return fields[i], nil
}

func parseReportTime(kind string, fields []string, i int) (ReportTime, error) {
	if i >= len(fields) {
		return ReportTime{}, &DecodeError{Kind: kind, Reason: "missing report time"}
	}
	sm := timeRe.FindStringSubmatch(fields[i])
	if sm == nil {
		return ReportTime{}, &DecodeError{Kind: kind, Group: fields[i], Reason: "invalid report time"}
	}
	t := ReportTime{Day: atoi(sm[1]), Hour: atoi(sm[2]), Minute: atoi(sm[3])}
	if t.Day < 1 || t.Day > 31 || t.Hour > 23 || t.Minute > 59 {
		return ReportTime{}, &DecodeError{Kind: kind, Group: fields[i], Reason: "report time out of range"}
	}
	return t, nil
}

func parsePeriod(tok string) (Period, bool) {
	sm := periodRe.FindStringSubmatch(tok)
	if sm == nil {
		return Period{}, false
	}
	p := Period{FromDay: atoi(sm[1]), FromHour: atoi(sm[2]), ToDay: atoi(sm[3]), ToHour: atoi(sm[4])}
	if p.FromDay < 1 || p.FromDay > 31 || p.ToDay < 1 || p.ToDay > 31 || p.FromHour > 24 || p.ToHour > 24 {
		return Period{}, false
	}
	return p, true
}

func parseMiles(tok string) (*Visibility, bool) {
	sm := visMilesRe.FindStringSubmatch(tok)
	if sm == nil || (sm[2] == "" && sm[3] == "") {
		return nil, false
	}
	miles := 0.0
	if sm[2] != "" {
		miles = float64(atoi(sm[2]))
	}
	if sm[3] != "" {
		denom := atoi(sm[4])
		if denom == 0 {
			return nil, false
		}
		miles += float64(atoi(sm[3])) / float64(denom)
	}
	return &Visibility{StatuteMiles: &miles, LessThan: sm[1] == "M"}, true
}

func isWholeMiles(tok string) bool {
	return len(tok) == 1 && tok[0] >= '1' && tok[0] <= '9'
}

func signedTemp(s string) int {
	if strings.HasPrefix(s, "M") {
		return -atoi(s[1:])
	}
	return atoi(s)
}
