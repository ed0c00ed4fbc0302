package gorm

import "time"

// CompositionAudit records one successful briefing composition. The briefing
// itself is not stored.
type CompositionAudit struct {
	ID              string    `gorm:"column:id;primaryKey;type:uuid" db:"id" json:"id"`
	RequestID       string    `gorm:"column:request_id;type:varchar(64)" db:"request_id" json:"request_id"`
	DepartureICAO   string    `gorm:"column:departure_icao;type:varchar(4);not null;index" db:"departure_icao" json:"departure_icao"`
	DestinationICAO string    `gorm:"column:destination_icao;type:varchar(4);not null" db:"destination_icao" json:"destination_icao"`
	DateOfFlight    string    `gorm:"column:date_of_flight;type:varchar(8);not null" db:"date_of_flight" json:"date_of_flight"`
	DegradedLookups int       `gorm:"column:degraded_lookups;not null;default:0" db:"degraded_lookups" json:"degraded_lookups"`
	DurationMs      int64     `gorm:"column:duration_ms;not null" db:"duration_ms" json:"duration_ms"`
	CreatedAt       time.Time `gorm:"column:created_at;index" db:"created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (CompositionAudit) TableName() string {
	return "composition_audits"
}
