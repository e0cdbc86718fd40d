// Package repository provides the persistence layer: tabular flat files, per-campaign lead shards and relational lead backends
package repository

import (
	"context"

	"github.com/amirphl/lead-connect/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// LeadRepository persists the whole leads table. SaveAll is the only write path;
// callers always pass the complete table they loaded and modified.
type LeadRepository interface {
	LoadAll(ctx context.Context) ([]*models.Lead, error)
	SaveAll(ctx context.Context, leads []*models.Lead) error
}

// CampaignAwareLeadRepository is a LeadRepository whose save must know which campaigns still exist,
// so data it could not read is only discarded together with its campaign
type CampaignAwareLeadRepository interface {
	LeadRepository
	SaveAllForCampaigns(ctx context.Context, leads []*models.Lead, campaignIDs []string) error
}

// TableRepository persists a small table held in a single flat file
type TableRepository[T any] interface {
	LoadAll(ctx context.Context) ([]*T, error)
	SaveAll(ctx context.Context, rows []*T) error
}

// UserRepository defines operations for the users table
type UserRepository interface {
	TableRepository[models.User]
}

// CampaignRepository defines operations for the campaigns table
type CampaignRepository interface {
	TableRepository[models.Campaign]
}

// ActionLogRepository appends audit entries. It never reads the log back.
type ActionLogRepository interface {
	Append(ctx context.Context, entry *models.ActionLogEntry) error
}

// DataStore presents users, campaigns and leads as three logical tables
type DataStore interface {
	LoadAllData(ctx context.Context) (*models.Snapshot, error)
	SaveAllData(ctx context.Context, snapshot *models.Snapshot) error
}
