package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	"github.com/amirphl/lead-connect/utils"
	"go.uber.org/zap"
)

// LeadFlow is the representative's workspace: their campaigns, their leads and contact updates
type LeadFlow interface {
	MyCampaigns(ctx context.Context, actor models.Actor) (*dto.MyCampaignsResponse, error)
	ListMyLeads(ctx context.Context, actor models.Actor, req *dto.ListMyLeadsRequest) (*dto.ListMyLeadsResponse, error)
	SaveContactEdits(ctx context.Context, actor models.Actor, req *dto.SaveContactEditsRequest) (*dto.SaveContactEditsResponse, error)
}

// LeadFlowImpl implements the lead flow
type LeadFlowImpl struct {
	store       repository.DataStore
	coordinator *StoreCoordinator
	audit       *auditRecorder
	logger      *zap.Logger
}

// NewLeadFlow creates a new lead flow
func NewLeadFlow(
	store repository.DataStore,
	coordinator *StoreCoordinator,
	actionLogRepo repository.ActionLogRepository,
	logger *zap.Logger,
) LeadFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadFlowImpl{
		store:       store,
		coordinator: coordinator,
		audit:       newAuditRecorder(actionLogRepo, logger),
		logger:      logger,
	}
}

// MyCampaigns lists campaigns holding at least one lead assigned to the actor, in table order
func (f *LeadFlowImpl) MyCampaigns(ctx context.Context, actor models.Actor) (*dto.MyCampaignsResponse, error) {
	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("MY_CAMPAIGNS_FAILED", "Failed to load campaigns", err)
	}

	own := make(map[string]int)
	for _, l := range snapshot.Leads {
		if l.AssignedTo(actor.Username) && l.CampaignID != nil {
			own[*l.CampaignID]++
		}
	}

	items := make([]dto.CampaignResponse, 0, len(own))
	for _, c := range snapshot.Campaigns {
		if n, ok := own[c.CampaignID]; ok {
			items = append(items, ToCampaignResponse(c, n))
		}
	}
	return &dto.MyCampaignsResponse{Campaigns: items}, nil
}

// ListMyLeads returns the actor's leads in one campaign, optionally narrowed by priority and status
func (f *LeadFlowImpl) ListMyLeads(ctx context.Context, actor models.Actor, req *dto.ListMyLeadsRequest) (*dto.ListMyLeadsResponse, error) {
	filter, err := leadFilterFromRequest(req)
	if err != nil {
		return nil, NewBusinessError("LIST_LEADS_VALIDATION_FAILED", "Invalid lead filter", err)
	}

	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_LEADS_FAILED", "Failed to load leads", err)
	}
	campaign, _ := snapshot.CampaignByID(req.CampaignID)
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	var own []*models.Lead
	for _, l := range snapshot.LeadsInCampaign(req.CampaignID) {
		if l.AssignedTo(actor.Username) {
			own = append(own, l)
		}
	}
	if len(own) == 0 {
		return nil, NewBusinessError("CAMPAIGN_ACCESS_DENIED", "No leads assigned to you in this campaign", ErrCampaignAccessDenied)
	}

	views := make([]dto.LeadView, 0, len(own))
	for _, l := range own {
		shown := l.Clone()
		shown.Status = effectiveStatus(l)
		shown.Priority = effectivePriority(l)
		if !filter.Matches(shown) {
			continue
		}
		views = append(views, ToLeadView(l, campaign.CampaignType))
	}

	return &dto.ListMyLeadsResponse{
		Campaign: ToCampaignResponse(campaign, len(own)),
		Columns:  campaign.CampaignType.LeadViewColumns(),
		Leads:    views,
	}, nil
}

// SaveContactEdits validates the whole batch, then applies it to leads the actor owns in the campaign.
// A single bad row rejects the batch and nothing is written.
func (f *LeadFlowImpl) SaveContactEdits(ctx context.Context, actor models.Actor, req *dto.SaveContactEditsRequest) (*dto.SaveContactEditsResponse, error) {
	if len(req.Edits) == 0 {
		return nil, NewBusinessError("SAVE_CONTACT_EDITS_FAILED", "No edits submitted", ErrNoContactEdits)
	}
	edits, err := ValidateContactEdits(req.Edits)
	if err != nil {
		return nil, NewBusinessError("CONTACT_VALIDATION_FAILED", "Contact edits violate the status rules", err)
	}

	changed := 0
	err = f.coordinator.Do(ctx, func(ctx context.Context) error {
		snapshot, err := f.store.LoadAllData(ctx)
		if err != nil {
			return err
		}
		if c, _ := snapshot.CampaignByID(req.CampaignID); c == nil {
			return ErrCampaignNotFound
		}
		if err := checkEditOwnership(snapshot.Leads, edits, actor.Username, req.CampaignID); err != nil {
			return err
		}

		changed = ApplyContactEdits(snapshot.Leads, edits, utils.UTCNow())
		if changed == 0 {
			return nil
		}
		if err := f.store.SaveAllData(ctx, snapshot); err != nil {
			return err
		}
		f.audit.recordAction(ctx, actor, models.ActionTypeUpdate, models.TableLeads, req.CampaignID, nil,
			map[string]int{"changed": changed})
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("SAVE_CONTACT_EDITS_FAILED", "Failed to save contact edits", err)
	}

	f.logger.Info("contact edits saved",
		zap.String("campaign_id", req.CampaignID),
		zap.String("username", actor.Username),
		zap.Int("submitted", len(edits)),
		zap.Int("changed", changed))
	return &dto.SaveContactEditsResponse{Changed: changed}, nil
}

// checkEditOwnership requires every edited lead to exist, belong to campaignID and be assigned to username
func checkEditOwnership(leads []*models.Lead, edits []ValidatedContactEdit, username, campaignID string) error {
	byID := make(map[string]*models.Lead, len(leads))
	for _, l := range leads {
		byID[l.LeadID] = l
	}
	for _, e := range edits {
		l, ok := byID[e.LeadID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrLeadNotFound, e.LeadID)
		}
		if !l.InCampaign(campaignID) || !l.AssignedTo(username) {
			return fmt.Errorf("%w: %s", ErrLeadAccessDenied, e.LeadID)
		}
	}
	return nil
}

func leadFilterFromRequest(req *dto.ListMyLeadsRequest) (models.LeadFilter, error) {
	var filter models.LeadFilter
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		return filter, err
	}
	if priority != "" {
		filter.Priority = &priority
	}
	status, err := models.ParseLeadStatus(req.Status)
	if err != nil {
		return filter, err
	}
	if status != "" {
		filter.Status = &status
	}
	return filter, nil
}
