// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	"github.com/amirphl/lead-connect/utils"
	"go.uber.org/zap"
)

// LeadUploadFile is the lead file attached to a new campaign
type LeadUploadFile struct {
	Filename string
	Content  io.Reader
}

// AdminCampaignFlow handles campaign administration
type AdminCampaignFlow interface {
	NextCampaignID(ctx context.Context) (*dto.NextCampaignIDResponse, error)
	ListCampaigns(ctx context.Context) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, campaignID string) (*dto.CampaignResponse, error)
	CreateCampaign(ctx context.Context, actor models.Actor, req *dto.CreateCampaignRequest, upload LeadUploadFile) (*dto.CreateCampaignResponse, error)
	UpdateCampaign(ctx context.Context, actor models.Actor, campaignID string, req *dto.UpdateCampaignRequest) (*dto.CampaignResponse, error)
	DeleteCampaign(ctx context.Context, actor models.Actor, campaignID string, req *dto.DeleteCampaignRequest) error
}

// AdminCampaignFlowImpl implements the campaign administration flow
type AdminCampaignFlowImpl struct {
	store       repository.DataStore
	coordinator *StoreCoordinator
	audit       *auditRecorder
	logger      *zap.Logger
}

// NewAdminCampaignFlow creates a new campaign administration flow
func NewAdminCampaignFlow(
	store repository.DataStore,
	coordinator *StoreCoordinator,
	actionLogRepo repository.ActionLogRepository,
	logger *zap.Logger,
) AdminCampaignFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminCampaignFlowImpl{
		store:       store,
		coordinator: coordinator,
		audit:       newAuditRecorder(actionLogRepo, logger),
		logger:      logger,
	}
}

// NextCampaignID previews the id the next created campaign receives
func (f *AdminCampaignFlowImpl) NextCampaignID(ctx context.Context) (*dto.NextCampaignIDResponse, error) {
	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("NEXT_CAMPAIGN_ID_FAILED", "Failed to load campaigns", err)
	}
	return &dto.NextCampaignIDResponse{CampaignID: NextCampaignID(snapshot.Campaigns)}, nil
}

// ListCampaigns returns every campaign in table order with its lead count
func (f *AdminCampaignFlowImpl) ListCampaigns(ctx context.Context) (*dto.ListCampaignsResponse, error) {
	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_CAMPAIGNS_FAILED", "Failed to load campaigns", err)
	}
	counts := countLeadsByCampaign(snapshot.Leads)
	items := make([]dto.CampaignResponse, 0, len(snapshot.Campaigns))
	for _, c := range snapshot.Campaigns {
		items = append(items, ToCampaignResponse(c, counts[c.CampaignID]))
	}
	return &dto.ListCampaignsResponse{Campaigns: items}, nil
}

// GetCampaign returns one campaign with its lead count
func (f *AdminCampaignFlowImpl) GetCampaign(ctx context.Context, campaignID string) (*dto.CampaignResponse, error) {
	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("GET_CAMPAIGN_FAILED", "Failed to load campaigns", err)
	}
	c, _ := snapshot.CampaignByID(campaignID)
	if c == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	resp := ToCampaignResponse(c, len(snapshot.LeadsInCampaign(campaignID)))
	return &resp, nil
}

// CreateCampaign allocates the next campaign id, imports the uploaded leads and stores both.
// Rows whose assigned_ic is not an existing username are skipped and reported.
func (f *AdminCampaignFlowImpl) CreateCampaign(ctx context.Context, actor models.Actor, req *dto.CreateCampaignRequest, upload LeadUploadFile) (*dto.CreateCampaignResponse, error) {
	if !actor.IsAdmin() {
		return nil, NewBusinessError("CREATE_CAMPAIGN_FAILED", "Only admins can create campaigns", ErrAdminRequired)
	}
	campaign, err := campaignFromCreateRequest(req)
	if err != nil {
		return nil, NewBusinessError("CREATE_CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}
	rows, err := ParseLeadUpload(upload.Filename, upload.Content)
	if err != nil {
		return nil, NewBusinessError("LEAD_UPLOAD_INVALID", "Lead upload is invalid", err)
	}

	var resp *dto.CreateCampaignResponse
	err = f.coordinator.Do(ctx, func(ctx context.Context) error {
		snapshot, err := f.store.LoadAllData(ctx)
		if err != nil {
			return err
		}

		campaignID := NextCampaignID(snapshot.Campaigns)
		if err := checkUploadCampaignIDs(rows, campaignID); err != nil {
			return err
		}

		now := utils.TruncateToSecond(utils.UTCNow())
		imported := make([]*models.Lead, 0, len(rows))
		missing := make(map[string]struct{})
		skipped := 0
		for _, row := range rows {
			username := utils.Deref(row.AssignedIC)
			ic := snapshot.UserByUsername(username)
			if ic == nil {
				skipped++
				if strings.TrimSpace(username) != "" {
					missing[username] = struct{}{}
				}
				continue
			}
			imported = append(imported, prepareImportedLead(row, campaignID, ic, now))
		}

		campaign.CampaignID = campaignID
		campaign.CreatedBy = utils.ToPtr(actor.UserID)
		campaign.CreatedAt = utils.ToPtr(now)
		campaign.Status = utils.ToPtr(models.CampaignStatusActive)

		snapshot.Campaigns = append(snapshot.Campaigns, campaign)
		snapshot.Leads = append(snapshot.Leads, imported...)
		if err := f.store.SaveAllData(ctx, snapshot); err != nil {
			return err
		}

		f.audit.recordAction(ctx, actor, models.ActionTypeCreate, models.TableCampaigns, campaignID, nil, campaign)
		f.audit.recordAction(ctx, actor, models.ActionTypeImport, models.TableLeads, campaignID, nil,
			map[string]int{"imported": len(imported)})

		missingICs := make([]string, 0, len(missing))
		for ic := range missing {
			missingICs = append(missingICs, ic)
		}
		sort.Strings(missingICs)

		resp = &dto.CreateCampaignResponse{
			Campaign: ToCampaignResponse(campaign, len(imported)),
			Import: dto.ImportReport{
				Imported:   len(imported),
				Skipped:    skipped,
				MissingICs: missingICs,
			},
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_CAMPAIGN_FAILED", "Failed to create campaign", err)
	}

	f.logger.Info("campaign created",
		zap.String("campaign_id", resp.Campaign.CampaignID),
		zap.String("user_id", actor.UserID),
		zap.Int("imported", resp.Import.Imported),
		zap.Strings("missing_ics", resp.Import.MissingICs))
	return resp, nil
}

// UpdateCampaign changes name, description or dates after the admin password is re-confirmed
func (f *AdminCampaignFlowImpl) UpdateCampaign(ctx context.Context, actor models.Actor, campaignID string, req *dto.UpdateCampaignRequest) (*dto.CampaignResponse, error) {
	if !actor.IsAdmin() {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_FAILED", "Only admins can update campaigns", ErrAdminRequired)
	}
	if req.CampaignName == nil && req.Description == nil && req.StartDate == nil && req.EndDate == nil {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignUpdateRequired)
	}

	var resp *dto.CampaignResponse
	err := f.coordinator.Do(ctx, func(ctx context.Context) error {
		snapshot, err := f.store.LoadAllData(ctx)
		if err != nil {
			return err
		}
		if !adminPasswordMatches(snapshot.Users, req.AdminPassword) {
			return ErrAdminPasswordMismatch
		}
		current, idx := snapshot.CampaignByID(campaignID)
		if current == nil {
			return ErrCampaignNotFound
		}

		updated, err := applyCampaignUpdate(current, req)
		if err != nil {
			return err
		}
		snapshot.Campaigns[idx] = updated
		if err := f.store.SaveAllData(ctx, snapshot); err != nil {
			return err
		}

		f.audit.recordAction(ctx, actor, models.ActionTypeUpdate, models.TableCampaigns, campaignID, current, updated)

		r := ToCampaignResponse(updated, len(snapshot.LeadsInCampaign(campaignID)))
		resp = &r
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_FAILED", "Failed to update campaign", err)
	}
	return resp, nil
}

// DeleteCampaign removes the campaign and all of its leads. The caller must type the campaign name back.
func (f *AdminCampaignFlowImpl) DeleteCampaign(ctx context.Context, actor models.Actor, campaignID string, req *dto.DeleteCampaignRequest) error {
	if !actor.IsAdmin() {
		return NewBusinessError("DELETE_CAMPAIGN_FAILED", "Only admins can delete campaigns", ErrAdminRequired)
	}

	deleted := 0
	err := f.coordinator.Do(ctx, func(ctx context.Context) error {
		snapshot, err := f.store.LoadAllData(ctx)
		if err != nil {
			return err
		}
		if !adminPasswordMatches(snapshot.Users, req.AdminPassword) {
			return ErrAdminPasswordMismatch
		}
		campaign, idx := snapshot.CampaignByID(campaignID)
		if campaign == nil {
			return ErrCampaignNotFound
		}
		if req.ConfirmName != campaign.CampaignName {
			return ErrConfirmNameMismatch
		}

		snapshot.Campaigns = append(snapshot.Campaigns[:idx:idx], snapshot.Campaigns[idx+1:]...)
		kept := make([]*models.Lead, 0, len(snapshot.Leads))
		for _, l := range snapshot.Leads {
			if l.InCampaign(campaignID) {
				deleted++
				continue
			}
			kept = append(kept, l)
		}
		snapshot.Leads = kept
		if err := f.store.SaveAllData(ctx, snapshot); err != nil {
			return err
		}

		f.audit.recordAction(ctx, actor, models.ActionTypeDelete, models.TableCampaigns, campaignID, campaign, nil)
		f.audit.recordAction(ctx, actor, models.ActionTypeDelete, models.TableLeads, campaignID,
			map[string]int{"count": deleted}, nil)
		return nil
	})
	if err != nil {
		return NewBusinessError("DELETE_CAMPAIGN_FAILED", "Failed to delete campaign", err)
	}

	f.logger.Info("campaign deleted",
		zap.String("campaign_id", campaignID),
		zap.String("user_id", actor.UserID),
		zap.Int("leads_deleted", deleted))
	return nil
}

func campaignFromCreateRequest(req *dto.CreateCampaignRequest) (*models.Campaign, error) {
	name := strings.TrimSpace(req.CampaignName)
	if name == "" {
		return nil, ErrCampaignNameRequired
	}
	if strings.TrimSpace(req.CampaignType) == "" {
		return nil, ErrCampaignTypeRequired
	}
	campaignType, err := models.ParseCampaignType(req.CampaignType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCampaignTypeInvalid, err)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrCampaignDescriptionRequired
	}
	if strings.TrimSpace(req.StartDate) == "" {
		return nil, ErrCampaignStartDateRequired
	}
	if strings.TrimSpace(req.EndDate) == "" {
		return nil, ErrCampaignEndDateRequired
	}
	start, err := parseCampaignDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseCampaignDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	c := &models.Campaign{
		CampaignName: name,
		CampaignType: campaignType,
		Description:  utils.ToPtr(strings.TrimSpace(req.Description)),
		StartDate:    &start,
		EndDate:      &end,
		ImagePath:    nilIfBlank(req.ImagePath),
		DocumentPath: nilIfBlank(req.DocumentPath),
	}
	if !c.DatesOrdered() {
		return nil, ErrInvalidDateRange
	}
	return c, nil
}

func applyCampaignUpdate(current *models.Campaign, req *dto.UpdateCampaignRequest) (*models.Campaign, error) {
	updated := current.Clone()
	if req.CampaignName != nil {
		name := strings.TrimSpace(*req.CampaignName)
		if name == "" {
			return nil, ErrCampaignNameRequired
		}
		updated.CampaignName = name
	}
	if req.Description != nil {
		updated.Description = utils.NilIfEmpty(strings.TrimSpace(*req.Description))
	}
	if req.StartDate != nil {
		start, err := parseCampaignDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		updated.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseCampaignDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		updated.EndDate = &end
	}
	if !updated.DatesOrdered() {
		return nil, ErrInvalidDateRange
	}
	return updated, nil
}

func parseCampaignDate(raw string) (time.Time, error) {
	t, err := time.Parse(utils.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCampaignDate, raw)
	}
	return t, nil
}

// adminPasswordMatches accepts the password of any admin account
func adminPasswordMatches(users []*models.User, password string) bool {
	if password == "" {
		return false
	}
	for _, u := range users {
		if u.IsAdmin() && CheckPassword(u.PasswordHash, password) {
			return true
		}
	}
	return false
}

func nilIfBlank(p *string) *string {
	if p == nil {
		return nil
	}
	return utils.NilIfEmpty(strings.TrimSpace(*p))
}
