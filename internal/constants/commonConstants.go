package constants

type (
	CachePrefix  string
	LookupSource string
)

const (
	CachePrefixAerodrome CachePrefix = "AERODROME_"
)

const (
	LookupAerodrome  LookupSource = "aerodrome"
	LookupWeather    LookupSource = "weather"
	LookupNotam      LookupSource = "notam"
	LookupAtsPreview LookupSource = "ats_preview"
)

// AtsPreviewUnavailable is returned in place of the rendered ATS message when
// the rendering service cannot produce one.
const AtsPreviewUnavailable = "ATS preview unavailable: message generation failed"

const (
	HeaderRequestID = "X-Request-ID"
)
