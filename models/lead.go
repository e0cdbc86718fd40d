// Package models contains domain entities for the lead tracker
package models

import (
	"strings"
	"time"

	"github.com/amirphl/lead-connect/utils"
)

// Lead column names, in the order they are written to every shard
const (
	LeadColLeadID           = "lead_id"
	LeadColCampaignID       = "campaign_id"
	LeadColCustomerName     = "customer_name"
	LeadColPhone            = "phone"
	LeadColEmail            = "email"
	LeadColBirthDate        = "birth_date"
	LeadColInvestmentLevel  = "investment_level"
	LeadColPreviousProduct  = "previous_product"
	LeadColInvestmentBudget = "investment_budget"
	LeadColPreferredContact = "preferred_contact"
	LeadColPolicyName       = "policy_name"
	LeadColMaturityDate     = "maturity_date"
	LeadColMaturityAmount   = "maturity_amount"
	LeadColAssignedHub      = "assigned_hub"
	LeadColAssignedIC       = "assigned_ic"
	LeadColStatus           = "status"
	LeadColPriority         = "priority"
	LeadColLastContactDate  = "last_contact_date"
	LeadColNextContactDate  = "next_contact_date"
	LeadColNotes            = "notes"
	LeadColCreatedAt        = "created_at"
	LeadColUpdatedAt        = "updated_at"
)

// LeadColumns is the fixed lead schema
var LeadColumns = []string{
	LeadColLeadID, LeadColCampaignID, LeadColCustomerName, LeadColPhone, LeadColEmail,
	LeadColBirthDate, LeadColInvestmentLevel, LeadColPreviousProduct, LeadColInvestmentBudget,
	LeadColPreferredContact, LeadColPolicyName, LeadColMaturityDate, LeadColMaturityAmount,
	LeadColAssignedHub, LeadColAssignedIC, LeadColStatus, LeadColPriority, LeadColLastContactDate,
	LeadColNextContactDate, LeadColNotes, LeadColCreatedAt, LeadColUpdatedAt,
}

// Import defaults applied to uploaded rows that leave a column blank
const (
	DefaultInvestmentLevel  = "Beginner"
	DefaultPreferredContact = "Phone"
)

// Lead is one outreach target. Nil pointers are empty cells.
type Lead struct {
	LeadID           string     `gorm:"column:lead_id;primaryKey;size:64" json:"lead_id"`
	CampaignID       *string    `gorm:"column:campaign_id;size:32;index:idx_leads_campaign_id" json:"campaign_id,omitempty"`
	CustomerName     *string    `gorm:"column:customer_name" json:"customer_name,omitempty"`
	Phone            *string    `gorm:"column:phone" json:"phone,omitempty"`
	Email            *string    `gorm:"column:email" json:"email,omitempty"`
	BirthDate        *string    `gorm:"column:birth_date" json:"birth_date,omitempty"`
	InvestmentLevel  *string    `gorm:"column:investment_level" json:"investment_level,omitempty"`
	PreviousProduct  *string    `gorm:"column:previous_product" json:"previous_product,omitempty"`
	InvestmentBudget *string    `gorm:"column:investment_budget" json:"investment_budget,omitempty"`
	PreferredContact *string    `gorm:"column:preferred_contact" json:"preferred_contact,omitempty"`
	PolicyName       *string    `gorm:"column:policy_name" json:"policy_name,omitempty"`
	MaturityDate     *string    `gorm:"column:maturity_date" json:"maturity_date,omitempty"`
	MaturityAmount   *string    `gorm:"column:maturity_amount" json:"maturity_amount,omitempty"`
	AssignedHub      *string    `gorm:"column:assigned_hub;index:idx_leads_assigned_hub" json:"assigned_hub,omitempty"`
	AssignedIC       *string    `gorm:"column:assigned_ic;index:idx_leads_assigned_ic" json:"assigned_ic,omitempty"`
	Status           LeadStatus `gorm:"column:status;size:32" json:"status"`
	Priority         Priority   `gorm:"column:priority;size:16" json:"priority"`
	LastContactDate  *time.Time `gorm:"column:last_contact_date" json:"last_contact_date,omitempty"`
	NextContactDate  *string    `gorm:"column:next_contact_date" json:"next_contact_date,omitempty"`
	Notes            *string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt        *time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Lead) TableName() string {
	return "leads"
}

// Clone returns a deep copy so staged edits never alias a loaded snapshot
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	c.CampaignID = clonePtr(l.CampaignID)
	c.CustomerName = clonePtr(l.CustomerName)
	c.Phone = clonePtr(l.Phone)
	c.Email = clonePtr(l.Email)
	c.BirthDate = clonePtr(l.BirthDate)
	c.InvestmentLevel = clonePtr(l.InvestmentLevel)
	c.PreviousProduct = clonePtr(l.PreviousProduct)
	c.InvestmentBudget = clonePtr(l.InvestmentBudget)
	c.PreferredContact = clonePtr(l.PreferredContact)
	c.PolicyName = clonePtr(l.PolicyName)
	c.MaturityDate = clonePtr(l.MaturityDate)
	c.MaturityAmount = clonePtr(l.MaturityAmount)
	c.AssignedHub = clonePtr(l.AssignedHub)
	c.AssignedIC = clonePtr(l.AssignedIC)
	c.LastContactDate = clonePtr(l.LastContactDate)
	c.NextContactDate = clonePtr(l.NextContactDate)
	c.Notes = clonePtr(l.Notes)
	c.CreatedAt = clonePtr(l.CreatedAt)
	c.UpdatedAt = clonePtr(l.UpdatedAt)
	return &c
}

// InCampaign reports whether the lead is routed to campaignID
func (l *Lead) InCampaign(campaignID string) bool {
	return l.CampaignID != nil && *l.CampaignID == campaignID
}

// AssignedTo reports whether username owns the lead
func (l *Lead) AssignedTo(username string) bool {
	return l.AssignedIC != nil && *l.AssignedIC == username
}

// CustomerCode is the short upper-case code shown to representatives
func (l *Lead) CustomerCode() string {
	id := l.LeadID
	if len(id) > utils.CustomerCodeLength {
		id = id[len(id)-utils.CustomerCodeLength:]
	}
	return strings.ToUpper(id)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// LeadFilter narrows a representative's lead list
type LeadFilter struct {
	Priority *Priority
	Status   *LeadStatus
}

// Matches reports whether l passes every set criterion
func (f LeadFilter) Matches(l *Lead) bool {
	if f.Priority != nil && l.Priority != *f.Priority {
		return false
	}
	if f.Status != nil && l.Status != *f.Status {
		return false
	}
	return true
}
