package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	gormlib "gorm.io/gorm"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/models/gorm"
)

// CompositionAuditRepository writes audits through GORM and lists them with
// sqlx.
type CompositionAuditRepository struct {
	orm *gormlib.DB
	db  *sqlx.DB
}

func NewCompositionAuditRepository(orm *gormlib.DB, db *sqlx.DB) *CompositionAuditRepository {
	return &CompositionAuditRepository{orm: orm, db: db}
}

// RecordComposition inserts an audit row, filling ID and CreatedAt when unset.
func (r *CompositionAuditRepository) RecordComposition(ctx context.Context, audit *gorm.CompositionAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	return r.orm.WithContext(ctx).Create(audit).Error
}

// ListRecent returns up to limit audits, newest first.
func (r *CompositionAuditRepository) ListRecent(ctx context.Context, limit int) ([]gorm.CompositionAudit, error) {
	audits := []gorm.CompositionAudit{}

	query := r.db.Rebind(constants.ListRecentCompositionAudits)
	if err := r.db.SelectContext(ctx, &audits, query, limit); err != nil {
		return nil, err
	}
	return audits, nil
}

// Count returns the total number of stored audits.
func (r *CompositionAuditRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowxContext(ctx, constants.CountCompositionAudits).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
