package constants

const (
	// ListRecentCompositionAudits expects the limit as its only bind parameter.
	ListRecentCompositionAudits = `
		SELECT id, request_id, departure_icao, destination_icao, date_of_flight,
		       degraded_lookups, duration_ms, created_at
		FROM composition_audits
		ORDER BY created_at DESC
		LIMIT ?
	`

	CountCompositionAudits = `SELECT COUNT(*) FROM composition_audits`
)
