package dto

// ListMyLeadsRequest filters a representative's leads within one campaign
type ListMyLeadsRequest struct {
	CampaignID string `query:"campaign_id" validate:"required"`
	Priority   string `query:"priority" validate:"omitempty"`
	Status     string `query:"status" validate:"omitempty"`
}

// LeadView is a lead as shown to its representative. Contact date and time are split for editing.
type LeadView struct {
	LeadID          string  `json:"lead_id"`
	CustomerCode    string  `json:"customer_code" example:"5F3A9C21"`
	CustomerName    string  `json:"customer_name"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	PolicyName      *string `json:"policy_name,omitempty"`
	MaturityDate    *string `json:"maturity_date,omitempty"`
	MaturityAmount  *string `json:"maturity_amount,omitempty"`
	Priority        string  `json:"priority" example:"Medium"`
	Status          string  `json:"status" example:"not yet contacted"`
	StatusLabel     string  `json:"status_label" example:"ยังไม่ติดต่อ"`
	ContactDate     *string `json:"contact_date,omitempty" example:"2024-03-01"`
	ContactTime     *string `json:"contact_time,omitempty" example:"10:00:00"`
	NextContactDate *string `json:"next_contact_date,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// ListMyLeadsResponse carries the campaign, its column set and the filtered leads
type ListMyLeadsResponse struct {
	Campaign CampaignResponse `json:"campaign"`
	Columns  []string         `json:"columns"`
	Leads    []LeadView       `json:"leads"`
}

// MyCampaignsResponse lists campaigns that hold at least one lead assigned to the caller
type MyCampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
}

// ContactEdit is one row of the representative's edit grid
type ContactEdit struct {
	LeadID      string  `json:"lead_id" validate:"required"`
	Status      string  `json:"status"`
	ContactDate *string `json:"contact_date,omitempty" example:"2024-03-01"`
	ContactTime *string `json:"contact_time,omitempty" example:"10:00:00"`
	// Notes are left as stored when omitted; an empty string clears them
	Notes *string `json:"notes,omitempty"`
}

// SaveContactEditsRequest is the whole pending batch; it is applied entirely or not at all
type SaveContactEditsRequest struct {
	CampaignID string        `json:"campaign_id" validate:"required"`
	Edits      []ContactEdit `json:"edits" validate:"required,min=1,dive"`
}

// SaveContactEditsResponse reports how many leads actually changed
type SaveContactEditsResponse struct {
	Changed int `json:"changed" example:"3"`
}

// ContactViolations lists the lead ids that failed each rule
type ContactViolations struct {
	RequiredViolations  []string `json:"required_violations,omitempty"`
	ForbiddenViolations []string `json:"forbidden_violations,omitempty"`
	InvalidStatus       []string `json:"invalid_status,omitempty"`
	Malformed           []string `json:"malformed,omitempty"`
}
