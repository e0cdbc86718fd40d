// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
)

const RequestIDKey = "X-Request-ID"

// ToCampaignResponse converts a campaign model to its API shape
func ToCampaignResponse(c *models.Campaign, leadCount int) dto.CampaignResponse {
	resp := dto.CampaignResponse{
		CampaignID:   c.CampaignID,
		CampaignName: c.CampaignName,
		CampaignType: c.CampaignType.String(),
		Description:  utils.Deref(c.Description),
		ImagePath:    c.ImagePath,
		DocumentPath: c.DocumentPath,
		CreatedBy:    utils.Deref(c.CreatedBy),
		CreatedAt:    utils.FormatTimestampPtr(c.CreatedAt),
		Status:       utils.Deref(c.Status),
		LeadCount:    leadCount,
	}
	if c.StartDate != nil {
		resp.StartDate = c.StartDate.Format(utils.DateLayout)
	}
	if c.EndDate != nil {
		resp.EndDate = c.EndDate.Format(utils.DateLayout)
	}
	return resp
}

// ToLeadView converts a lead to the row a representative edits.
// A blank status reads as not yet contacted and a blank priority as Medium.
func ToLeadView(l *models.Lead, campaignType models.CampaignType) dto.LeadView {
	status := effectiveStatus(l)
	v := dto.LeadView{
		LeadID:          l.LeadID,
		CustomerCode:    l.CustomerCode(),
		CustomerName:    utils.Deref(l.CustomerName),
		Phone:           utils.Deref(l.Phone),
		Email:           utils.Deref(l.Email),
		Priority:        effectivePriority(l).String(),
		Status:          status.String(),
		StatusLabel:     status.Label(),
		NextContactDate: l.NextContactDate,
		Notes:           l.Notes,
		UpdatedAt:       utils.FormatTimestampPtr(l.UpdatedAt),
	}
	if campaignType.ShowsMaturity() {
		v.PolicyName = l.PolicyName
		v.MaturityDate = l.MaturityDate
		v.MaturityAmount = l.MaturityAmount
	}
	if l.LastContactDate != nil {
		v.ContactDate = utils.ToPtr(l.LastContactDate.Format(utils.DateLayout))
		v.ContactTime = utils.ToPtr(l.LastContactDate.Format(utils.ClockLayout))
	}
	return v
}

// ToUserInfo converts a user to the signed-in user payload
func ToUserInfo(u *models.User) dto.UserInfo {
	return dto.UserInfo{
		UserID:   u.UserID,
		Username: u.Username,
		FullName: utils.Deref(u.FullName),
		Role:     u.Role.String(),
		HubName:  utils.Deref(u.HubName),
	}
}

// ToContactViolations converts a validation error to its API shape
func ToContactViolations(e *ContactValidationError) dto.ContactViolations {
	return dto.ContactViolations{
		RequiredViolations:  e.RequiredViolations,
		ForbiddenViolations: e.ForbiddenViolations,
		InvalidStatus:       e.InvalidStatus,
		Malformed:           e.Malformed,
	}
}

func effectiveStatus(l *models.Lead) models.LeadStatus {
	if l.Status == "" {
		return models.LeadStatusNotYetContacted
	}
	return l.Status
}

func effectivePriority(l *models.Lead) models.Priority {
	if l.Priority == "" {
		return models.PriorityMedium
	}
	return l.Priority
}

// countLeadsByCampaign counts leads per campaign id
func countLeadsByCampaign(leads []*models.Lead) map[string]int {
	counts := make(map[string]int)
	for _, l := range leads {
		if l.CampaignID != nil {
			counts[*l.CampaignID]++
		}
	}
	return counts
}
