package responses

import "time"

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// APIResponse is the envelope of every briefing API response. Exactly one of
// Data and Error is set, matching Success.
type APIResponse[T any] struct {
	Success   bool       `json:"success"`
	Data      *T         `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
