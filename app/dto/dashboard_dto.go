package dto

// GroupStat counts closed and still-open leads of one group
type GroupStat struct {
	Key     string `json:"key" example:"Hub A"`
	Label   string `json:"label,omitempty" example:"Tech IPO 2024"`
	Total   int    `json:"total" example:"40"`
	Closed  int    `json:"closed" example:"12"`
	Pending int    `json:"pending" example:"28"`
}

// AdminDashboardResponse summarizes the whole tracker
type AdminDashboardResponse struct {
	TotalLeads     int         `json:"total_leads"`
	TotalCampaigns int         `json:"total_campaigns"`
	TotalICs       int         `json:"total_ics"`
	ClosedDeals    int         `json:"closed_deals"`
	Hubs           []GroupStat `json:"hubs"`
}

// ICDashboardResponse summarizes one representative's leads
type ICDashboardResponse struct {
	TotalLeads   int         `json:"total_leads"`
	ClosedDeals  int         `json:"closed_deals"`
	NotContacted int         `json:"not_contacted"`
	HighPriority int         `json:"high_priority"`
	Campaigns    []GroupStat `json:"campaigns"`
}
