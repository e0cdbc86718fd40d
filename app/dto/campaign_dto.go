package dto

// CreateCampaignRequest carries the campaign fields of the create form. The lead file is uploaded alongside.
type CreateCampaignRequest struct {
	CampaignName string  `json:"campaign_name" form:"campaign_name" validate:"required,max=255" example:"Tech IPO 2024"`
	CampaignType string  `json:"campaign_type" form:"campaign_type" validate:"required,oneof=IPO Insurance Bond Other" example:"IPO"`
	Description  string  `json:"description" form:"description" validate:"required" example:"Pre-IPO outreach for retail investors"`
	StartDate    string  `json:"start_date" form:"start_date" validate:"required,datetime=2006-01-02" example:"2024-03-01"`
	EndDate      string  `json:"end_date" form:"end_date" validate:"required,datetime=2006-01-02" example:"2024-03-31"`
	ImagePath    *string `json:"image_path,omitempty" form:"image_path" validate:"omitempty,max=1024"`
	DocumentPath *string `json:"document_path,omitempty" form:"document_path" validate:"omitempty,max=1024"`
}

// UpdateCampaignRequest changes the editable campaign fields. The admin password re-confirms the action.
type UpdateCampaignRequest struct {
	CampaignName  *string `json:"campaign_name,omitempty" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description,omitempty"`
	StartDate     *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AdminPassword string  `json:"admin_password" validate:"required"`
}

// DeleteCampaignRequest requires the campaign name typed back and the admin password
type DeleteCampaignRequest struct {
	ConfirmName   string `json:"confirm_name" validate:"required"`
	AdminPassword string `json:"admin_password" validate:"required"`
}

// CampaignResponse describes one campaign
type CampaignResponse struct {
	CampaignID   string  `json:"campaign_id" example:"CAMP-005"`
	CampaignName string  `json:"campaign_name" example:"Tech IPO 2024"`
	CampaignType string  `json:"campaign_type" example:"IPO"`
	Description  string  `json:"description,omitempty"`
	StartDate    string  `json:"start_date,omitempty" example:"2024-03-01"`
	EndDate      string  `json:"end_date,omitempty" example:"2024-03-31"`
	ImagePath    *string `json:"image_path,omitempty"`
	DocumentPath *string `json:"document_path,omitempty"`
	CreatedBy    string  `json:"created_by,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty" example:"2024-02-20 10:15:00"`
	Status       string  `json:"status,omitempty" example:"Active"`
	LeadCount    int     `json:"lead_count" example:"120"`
}

// ImportReport summarizes a lead upload
type ImportReport struct {
	Imported   int      `json:"imported" example:"1"`
	Skipped    int      `json:"skipped" example:"1"`
	MissingICs []string `json:"missing_ics" example:"ghost"`
}

// CreateCampaignResponse is returned after a campaign and its leads are stored
type CreateCampaignResponse struct {
	Campaign CampaignResponse `json:"campaign"`
	Import   ImportReport     `json:"import"`
}

// ListCampaignsResponse lists campaigns in table order
type ListCampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
}

// NextCampaignIDResponse previews the id the next campaign will receive
type NextCampaignIDResponse struct {
	CampaignID string `json:"campaign_id" example:"CAMP-006"`
}
