package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CampaignType gates which lead columns representatives see
type CampaignType string

const (
	CampaignTypeIPO       CampaignType = "IPO"
	CampaignTypeInsurance CampaignType = "Insurance"
	CampaignTypeBond      CampaignType = "Bond"
	CampaignTypeOther     CampaignType = "Other"
)

// String returns the string representation of the type
func (t CampaignType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t CampaignType) Valid() bool {
	switch t {
	case CampaignTypeIPO, CampaignTypeInsurance, CampaignTypeBond, CampaignTypeOther:
		return true
	default:
		return false
	}
}

// ParseCampaignType is case-insensitive; an empty string yields the zero type
func ParseCampaignType(raw string) (CampaignType, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	for _, t := range []CampaignType{CampaignTypeIPO, CampaignTypeInsurance, CampaignTypeBond, CampaignTypeOther} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown campaign type %q", raw)
}

// ShowsMaturity reports whether policy and maturity columns apply to the type
func (t CampaignType) ShowsMaturity() bool {
	return t != CampaignTypeIPO
}

// LeadViewColumns lists the columns a representative works with for this campaign type
func (t CampaignType) LeadViewColumns() []string {
	cols := []string{"customer_code", LeadColCustomerName, LeadColPhone, LeadColEmail}
	if t.ShowsMaturity() {
		cols = append(cols, LeadColPolicyName, LeadColMaturityDate, LeadColMaturityAmount)
	}
	return append(cols, LeadColPriority, LeadColStatus, "contact_date", "contact_time", LeadColNotes)
}

// CampaignStatusActive is the status every new campaign starts in
const CampaignStatusActive = "Active"

// CampaignIDPrefix prefixes every allocated campaign id
const CampaignIDPrefix = "CAMP-"

// CampaignIDPattern matches ids produced by the allocator
var CampaignIDPattern = regexp.MustCompile(`^CAMP-(\d+)$`)

// Campaign column names
var CampaignColumns = []string{
	"campaign_id", "campaign_name", "campaign_type", "description",
	"start_date", "end_date", "image_path", "document_path",
	"created_by", "created_at", "status",
}

// Campaign represents an outreach campaign
type Campaign struct {
	CampaignID   string       `json:"campaign_id"`
	CampaignName string       `json:"campaign_name"`
	CampaignType CampaignType `json:"campaign_type"`
	Description  *string      `json:"description,omitempty"`
	StartDate    *time.Time   `json:"start_date,omitempty"`
	EndDate      *time.Time   `json:"end_date,omitempty"`
	ImagePath    *string      `json:"image_path,omitempty"`
	DocumentPath *string      `json:"document_path,omitempty"`
	CreatedBy    *string      `json:"created_by,omitempty"`
	CreatedAt    *time.Time   `json:"created_at,omitempty"`
	Status       *string      `json:"status,omitempty"`
}

// DatesOrdered reports whether the end date is not before the start date
func (c *Campaign) DatesOrdered() bool {
	if c.StartDate == nil || c.EndDate == nil {
		return true
	}
	return !c.EndDate.Before(*c.StartDate)
}

// Clone returns a deep copy of the campaign
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Description = clonePtr(c.Description)
	cp.StartDate = clonePtr(c.StartDate)
	cp.EndDate = clonePtr(c.EndDate)
	cp.ImagePath = clonePtr(c.ImagePath)
	cp.DocumentPath = clonePtr(c.DocumentPath)
	cp.CreatedBy = clonePtr(c.CreatedBy)
	cp.CreatedAt = clonePtr(c.CreatedAt)
	cp.Status = clonePtr(c.Status)
	return &cp
}
