package constants

// Error codes returned by the composition endpoint and the upstream client.

// Request errors
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
)

// Upstream errors
const (
	ErrCodeNetworkError        = "NETWORK_ERROR"
	ErrCodeUpstreamServerError = "UPSTREAM_SERVER_ERROR"
	ErrCodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	ErrCodeUpstreamRejected    = "UPSTREAM_REJECTED"
	ErrCodeInvalidDataFormat   = "INVALID_DATA_FORMAT"
)

// Weather decoding
const (
	ErrCodeDecodeFailed = "DECODE_FAILED"
)

var ErrorMessages = map[string]string{
	ErrCodeValidationFailed: "The flight plan failed field validation",
	ErrCodeInternal:         "Internal server error",
	ErrCodeRateLimited:      "Rate limit exceeded. Please try again later",

	ErrCodeNetworkError:        "Unable to reach the briefing backend",
	ErrCodeUpstreamServerError: "The briefing backend returned a server error",
	ErrCodeResourceNotFound:    "The requested resource was not found upstream",
	ErrCodeUpstreamRejected:    "The briefing backend rejected the request",
	ErrCodeInvalidDataFormat:   "The data format is invalid",

	ErrCodeDecodeFailed: "Unable to decode the weather report",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
