package testing

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// FixedTime is the timestamp fixtures are stamped with
var FixedTime = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

// DataDir is the file layout of one data directory
type DataDir struct {
	Root        string
	Leads       string
	Users       string
	Campaigns   string
	LegacyLeads string
	ActionLog   string
}

// NewDataDir lays out a data directory under root, usually t.TempDir()
func NewDataDir(root string) DataDir {
	return DataDir{
		Root:        root,
		Leads:       filepath.Join(root, "leads"),
		Users:       filepath.Join(root, "users.xlsx"),
		Campaigns:   filepath.Join(root, "campaigns.xlsx"),
		LegacyLeads: filepath.Join(root, "leads.xlsx"),
		ActionLog:   filepath.Join(root, "action_logs.csv"),
	}
}

// NewLead creates an uncontacted lead for campaignID assigned to ic
func NewLead(campaignID, ic string) *models.Lead {
	id := uuid.New().String()
	return &models.Lead{
		LeadID:           id,
		CampaignID:       utils.ToPtr(campaignID),
		CustomerName:     utils.ToPtr("Customer " + id[:8]),
		Phone:            utils.ToPtr("0812345678"),
		Email:            utils.ToPtr(id[:8] + "@example.com"),
		InvestmentLevel:  utils.ToPtr(models.DefaultInvestmentLevel),
		PreferredContact: utils.ToPtr(models.DefaultPreferredContact),
		AssignedHub:      utils.ToPtr("Hub A"),
		AssignedIC:       utils.ToPtr(ic),
		Status:           models.LeadStatusNotYetContacted,
		Priority:         models.PriorityMedium,
		CreatedAt:        utils.ToPtr(FixedTime),
		UpdatedAt:        utils.ToPtr(FixedTime),
	}
}

// NewLeads creates n leads for campaignID assigned to ic
func NewLeads(n int, campaignID, ic string) []*models.Lead {
	leads := make([]*models.Lead, 0, n)
	for range n {
		leads = append(leads, NewLead(campaignID, ic))
	}
	return leads
}

// NewCampaign creates an active campaign running through January 2024
func NewCampaign(id, name string, campaignType models.CampaignType) *models.Campaign {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	return &models.Campaign{
		CampaignID:   id,
		CampaignName: name,
		CampaignType: campaignType,
		Description:  utils.ToPtr(fmt.Sprintf("%s campaign", name)),
		StartDate:    &start,
		EndDate:      &end,
		CreatedBy:    utils.ToPtr("admin"),
		CreatedAt:    utils.ToPtr(FixedTime),
		Status:       utils.ToPtr(models.CampaignStatusActive),
	}
}

// NewUser creates a user whose password hash matches password
func NewUser(username, password string, role models.UserRole, hub string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &models.User{
		UserID:       uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     utils.ToPtr(username),
		Role:         role,
		HubName:      utils.NilIfEmpty(hub),
		CreatedAt:    utils.ToPtr(FixedTime),
	}
}

// DemoUsers returns an admin and two representatives in different hubs
func DemoUsers() []*models.User {
	return []*models.User{
		NewUser("admin", "admin123", models.UserRoleAdmin, ""),
		NewUser("ic101", "password1", models.UserRoleIC, "Hub A"),
		NewUser("ic201", "password4", models.UserRoleIC, "Hub B"),
	}
}

// SortLeads orders leads by id so tables can be compared regardless of row order
func SortLeads(leads []*models.Lead) []*models.Lead {
	out := append([]*models.Lead(nil), leads...)
	sort.Slice(out, func(i, j int) bool { return out[i].LeadID < out[j].LeadID })
	return out
}
