package validation

import (
	"fmt"
	"strings"

	"infinite-experiment/briefing/internal/constants"
)

// FieldViolation is one failed rule on one field. Field uses JSON paths such
// as "departure.icao".
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned when a submission does not satisfy the field
// grammar. It lists every violation, not only the first.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fmt.Sprintf("%s: %d invalid field(s): %s",
		constants.GetErrorMessage(constants.ErrCodeValidationFailed),
		len(e.Violations),
		strings.Join(fields, ", "),
	)
}

// Code returns the machine-readable error code.
func (e *ValidationError) Code() string {
	return constants.ErrCodeValidationFailed
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
