package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/lead-connect/models"
)

// DataStoreImpl merges the flat user and campaign tables with the lead repository on every read
type DataStoreImpl struct {
	users     UserRepository
	campaigns CampaignRepository
	leads     LeadRepository
}

// NewDataStore creates the logical table view
func NewDataStore(users UserRepository, campaigns CampaignRepository, leads LeadRepository) *DataStoreImpl {
	return &DataStoreImpl{users: users, campaigns: campaigns, leads: leads}
}

// LoadAllData re-reads every backing store. Nothing is cached between calls.
func (s *DataStoreImpl) LoadAllData(ctx context.Context) (*models.Snapshot, error) {
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	campaigns, err := s.campaigns.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}
	leads, err := s.leads.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	return &models.Snapshot{Users: users, Campaigns: campaigns, Leads: leads}, nil
}

// SaveAllData overwrites users and campaigns, then hands the full leads table to the lead repository.
// The lead repository is called even for an empty table so stale shards are collected.
// A flat table that exists but cannot be parsed is never overwritten; the save stops with ErrUnreadableTable.
func (s *DataStoreImpl) SaveAllData(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot == nil {
		snapshot = &models.Snapshot{}
	}
	if err := s.users.SaveAll(ctx, snapshot.Users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	if err := s.campaigns.SaveAll(ctx, snapshot.Campaigns); err != nil {
		return fmt.Errorf("failed to save campaigns: %w", err)
	}
	var err error
	if aware, ok := s.leads.(CampaignAwareLeadRepository); ok {
		ids := make([]string, 0, len(snapshot.Campaigns))
		for _, c := range snapshot.Campaigns {
			if c != nil {
				ids = append(ids, c.CampaignID)
			}
		}
		err = aware.SaveAllForCampaigns(ctx, snapshot.Leads, ids)
	} else {
		err = s.leads.SaveAll(ctx, snapshot.Leads)
	}
	if err != nil {
		return fmt.Errorf("failed to save leads: %w", err)
	}
	return nil
}

var _ DataStore = (*DataStoreImpl)(nil)
