package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"infinite-experiment/briefing/internal/models/dtos"
)

var (
	icaoRe          = regexp.MustCompile(`^[A-Z]{4}$`)
	fourDigitsRe    = regexp.MustCompile(`^\d{4}$`)
	dofRe           = regexp.MustCompile(`^\d{8}$`)
	cruiseSpeedRe   = regexp.MustCompile(`^N\d{4}$`)
	cruiseLevelRe   = regexp.MustCompile(`^F\d{3}$`)
	capabilityRe    = regexp.MustCompile(`^[A-Z][0-9]?$`)
	licenseRe       = regexp.MustCompile(`^[A-Z0-9]{3,12}$`)
	phoneRe         = regexp.MustCompile(`^\+?[0-9 ()-]{8,20}$`)
	alphanumUpperRe = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// ruleMessages holds the message reported for each failed rule.
var ruleMessages = map[string]string{
	"required":         "is required",
	"oneof":            "must be one of: %s",
	"min":              "must have at least %s characters or entries",
	"max":              "must have at most %s characters",
	"gte":              "must be greater than or equal to %s",
	"lte":              "must be less than or equal to %s",
	"icao":             "must be a 4-letter uppercase ICAO code",
	"hhmm":             "must be a UTC time in HHMM format",
	"duration_hhmm":    "must be a duration in HHMM format",
	"dof":              "must be a valid date in YYYYMMDD format",
	"cruise_speed":     "must match N followed by 4 digits (e.g. N0120)",
	"cruise_level":     "must match F followed by 3 digits (e.g. F085)",
	"capability_codes": "keys must be capability codes such as S, G or E1",
	"license":          "must be 3-12 uppercase letters or digits",
	"phone":            "must be a phone number",
	"notblank":         "must not be blank",
	"alphanumupper":    "must contain only uppercase letters and digits",
	"json":             "has an invalid type or the body is not valid JSON",
}

// FieldValidator checks a submission against the ICAO field grammar. It is
// safe for concurrent use.
type FieldValidator struct {
	validate *validator.Validate
}

var (
	defaultValidator *FieldValidator
	defaultOnce      sync.Once
)

// Default returns a process-wide FieldValidator.
func Default() *FieldValidator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

func New() *FieldValidator {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(jsonFieldName)

	mustRegister(v, "icao", matchString(icaoRe))
	mustRegister(v, "hhmm", isClockTime)
	mustRegister(v, "duration_hhmm", isDuration)
	mustRegister(v, "dof", isDateOfFlight)
	mustRegister(v, "cruise_speed", matchString(cruiseSpeedRe))
	mustRegister(v, "cruise_level", matchString(cruiseLevelRe))
	mustRegister(v, "capability_codes", hasCapabilityKeys)
	mustRegister(v, "license", matchString(licenseRe))
	mustRegister(v, "phone", matchString(phoneRe))
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "alphanumupper", matchString(alphanumUpperRe))

	return &FieldValidator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Validate returns a *ValidationError listing every violated field, or nil.
func (fv *FieldValidator) Validate(sub *dtos.FlightPlanSubmission) error {
	if sub == nil {
		return &ValidationError{Violations: []FieldViolation{{Field: "$", Rule: "required", Message: "$ is required"}}}
	}

	err := fv.validate.Struct(sub)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		violations = append(violations, FieldViolation{
			Field:   field,
			Rule:    fe.Tag(),
			Message: field + " " + ruleMessage(fe.Tag(), fe.Param()),
		})
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Field < violations[j].Field
	})

	return &ValidationError{Violations: violations}
}

// DecodeAndValidate parses a raw JSON body and validates it. JSON syntax and
// type errors are reported as violations too, so callers only ever see a
// *ValidationError for bad input. Members with the wrong JSON type are listed
// alongside the grammar violations of everything that did decode.
func (fv *FieldValidator) DecodeAndValidate(raw []byte) (*dtos.FlightPlanSubmission, error) {
	var sub dtos.FlightPlanSubmission

	dec := json.NewDecoder(bytes.NewReader(raw))
	decodeErr := dec.Decode(&sub)
	var typeErr *json.UnmarshalTypeError
	if decodeErr != nil && !errors.As(decodeErr, &typeErr) {
		return nil, jsonViolation(decodeErr)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Violations: []FieldViolation{{
			Field: "$", Rule: "json", Message: "$ must contain a single JSON object",
		}}}
	}

	var violations []FieldViolation
	if decodeErr != nil {
		violations = typeViolations(raw, reflect.TypeOf(sub), "")
		if len(violations) == 0 {
			violations = jsonViolation(decodeErr).Violations
		}
	}

	if err := fv.Validate(&sub); err != nil {
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			return nil, err
		}
		violations = mergeViolations(violations, vErr.Violations)
	}

	if len(violations) > 0 {
		sort.SliceStable(violations, func(i, j int) bool {
			return violations[i].Field < violations[j].Field
		})
		return nil, &ValidationError{Violations: violations}
	}
	return &sub, nil
}

func jsonViolation(err error) *ValidationError {
	field := "$"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field = typeErr.Field
	}
	return &ValidationError{Violations: []FieldViolation{typeViolation(field)}}
}

func typeViolation(field string) FieldViolation {
	return FieldViolation{
		Field:   field,
		Rule:    "json",
		Message: field + " " + ruleMessages["json"],
	}
}

// typeViolations walks raw alongside t and reports every member whose JSON
// value does not fit the Go type, not only the first one encoding/json sees.
func typeViolations(raw json.RawMessage, t reflect.Type, path string) []FieldViolation {
	field := path
	if field == "" {
		field = "$"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, reflect.New(t).Interface()); err != nil {
			return []FieldViolation{typeViolation(field)}
		}
		return nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return []FieldViolation{typeViolation(field)}
	}

	var out []FieldViolation
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonFieldName(f)
		member, ok := members[name]
		if name == "" || !ok {
			continue
		}
		child := name
		if path != "" {
			child = path + "." + name
		}
		out = append(out, typeViolations(member, f.Type, child)...)
	}
	return out
}

// mergeViolations appends grammar violations, dropping those on or below a
// field that already failed to decode.
func mergeViolations(typeErrs, grammar []FieldViolation) []FieldViolation {
	out := typeErrs
	for _, g := range grammar {
		covered := false
		for _, te := range typeErrs {
			if te.Field == "$" || g.Field == te.Field || strings.HasPrefix(g.Field, te.Field+".") {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, g)
		}
	}
	return out
}

// jsonFieldName reports a struct field by its JSON member name.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func ruleMessage(tag, param string) string {
	msg, ok := ruleMessages[tag]
	if !ok {
		return "failed rule " + tag
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, param)
	}
	return msg
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func isClockTime(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !fourDigitsRe.MatchString(s) {
		return false
	}
	return s[:2] <= "23" && s[2:] <= "59"
}

func isDuration(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return fourDigitsRe.MatchString(s) && s[2:] <= "59"
}

func isDateOfFlight(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !dofRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("20060102", s)
	return err == nil
}

func hasCapabilityKeys(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	iter := field.MapRange()
	for iter.Next() {
		if !capabilityRe.MatchString(iter.Key().String()) {
			return false
		}
	}
	return true
}
