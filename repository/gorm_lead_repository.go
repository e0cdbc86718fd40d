package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/lead-connect/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// leadRow is the relational form of a lead; Position preserves table order
type leadRow struct {
	Position int         `gorm:"column:position;not null;index:idx_leads_position"`
	Lead     models.Lead `gorm:"embedded"`
}

func (leadRow) TableName() string {
	return "leads"
}

// GormLeadRepository stores the leads table in PostgreSQL
type GormLeadRepository struct {
	*BaseRepository[leadRow]
	logger *zap.Logger
}

// NewGormLeadRepository creates a postgres-backed lead repository
func NewGormLeadRepository(db *gorm.DB, logger *zap.Logger) *GormLeadRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormLeadRepository{
		BaseRepository: NewBaseRepository[leadRow](db),
		logger:         logger,
	}
}

// Migrate creates or updates the leads table
func (r *GormLeadRepository) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(&leadRow{}); err != nil {
		return fmt.Errorf("failed to migrate leads table: %w", err)
	}
	return nil
}

// LoadAll reads every lead in table order
func (r *GormLeadRepository) LoadAll(ctx context.Context) ([]*models.Lead, error) {
	start := time.Now()
	defer func() {
		leadStoreDuration.WithLabelValues("postgres", "load").Observe(time.Since(start).Seconds())
	}()

	rows, err := r.All(ctx, "position ASC")
	if err != nil {
		return nil, err
	}
	leads := make([]*models.Lead, 0, len(rows))
	for _, row := range rows {
		lead := row.Lead
		leads = append(leads, &lead)
	}
	return leads, nil
}

// SaveAll replaces the table in one transaction. Leads without a campaign id are dropped.
func (r *GormLeadRepository) SaveAll(ctx context.Context, leads []*models.Lead) error {
	start := time.Now()
	defer func() {
		leadStoreDuration.WithLabelValues("postgres", "save").Observe(time.Since(start).Seconds())
	}()

	kept, dropped := partitionOrphans(leads)
	if dropped > 0 {
		orphanLeadsDroppedTotal.Add(float64(dropped))
		r.logger.Warn("Dropping leads without campaign id", zap.Int("count", dropped))
	}

	rows := make([]*leadRow, 0, len(kept))
	for i, l := range kept {
		rows = append(rows, &leadRow{Position: i, Lead: *l})
	}
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		return r.ReplaceAll(txCtx, rows)
	})
}

var _ LeadRepository = (*GormLeadRepository)(nil)
