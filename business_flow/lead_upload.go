package businessflow

import (
	"fmt"
	"io"
	"time"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	"github.com/amirphl/lead-connect/utils"
	"github.com/google/uuid"
)

// ParseLeadUpload reads an uploaded CSV or XLSX lead file. The format is chosen by the file name.
// The file must carry campaign_id and assigned_ic columns; values are checked later against the allocated id.
func ParseLeadUpload(filename string, r io.Reader) ([]*models.Lead, error) {
	format, err := repository.FormatOf(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLeadUpload, err)
	}
	sheet, err := repository.DecodeSheet(r, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLeadUpload, err)
	}

	idx := sheet.Index()
	if _, ok := idx[models.LeadColAssignedIC]; !ok {
		return nil, ErrAssignedICColumnMissing
	}
	if _, ok := idx[models.LeadColCampaignID]; !ok {
		return nil, ErrCampaignIDColumnMissing
	}
	if len(sheet.Rows) == 0 {
		return nil, ErrLeadUploadEmpty
	}

	leads, err := repository.LeadCodec.DecodeAll(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLeadUpload, err)
	}
	return leads, nil
}

// checkUploadCampaignIDs requires every row to name campaignID
func checkUploadCampaignIDs(leads []*models.Lead, campaignID string) error {
	for i, l := range leads {
		if !l.InCampaign(campaignID) {
			return fmt.Errorf("%w: row %d has %q, expected %q", ErrCampaignIDMismatch, i+2, utils.Deref(l.CampaignID), campaignID)
		}
	}
	return nil
}

// prepareImportedLead turns an uploaded row into a fresh uncontacted lead of campaignID
func prepareImportedLead(l *models.Lead, campaignID string, ic *models.User, now time.Time) *models.Lead {
	out := l.Clone()
	out.LeadID = uuid.New().String()
	out.CampaignID = utils.ToPtr(campaignID)
	out.Status = models.LeadStatusNotYetContacted
	if out.Priority == "" {
		out.Priority = models.PriorityMedium
	}
	if out.InvestmentLevel == nil {
		out.InvestmentLevel = utils.ToPtr(models.DefaultInvestmentLevel)
	}
	if out.PreferredContact == nil {
		out.PreferredContact = utils.ToPtr(models.DefaultPreferredContact)
	}
	if out.AssignedHub == nil && ic != nil && ic.HubName != nil {
		out.AssignedHub = utils.ToPtr(*ic.HubName)
	}
	out.LastContactDate = nil
	out.NextContactDate = nil
	out.CreatedAt = utils.ToPtr(now)
	out.UpdatedAt = utils.ToPtr(now)
	return out
}
