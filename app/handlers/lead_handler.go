package handlers

import (
	"errors"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// LeadHandlerInterface defines the contract for the representative's workspace
type LeadHandlerInterface interface {
	MyCampaigns(c fiber.Ctx) error
	ListMyLeads(c fiber.Ctx) error
	SaveContactEdits(c fiber.Ctx) error
}

// LeadHandler serves a representative's campaigns and leads
type LeadHandler struct {
	baseHandler
	flow businessflow.LeadFlow
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(flow businessflow.LeadFlow, logger *zap.Logger, requestTimeout time.Duration) *LeadHandler {
	return &LeadHandler{
		baseHandler: newBaseHandler(logger, requestTimeout),
		flow:        flow,
	}
}

// MyCampaigns lists campaigns with leads assigned to the caller
// @Summary My campaigns
// @Tags Leads
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.MyCampaignsResponse}
// @Router /api/v1/ic/campaigns [get]
func (h *LeadHandler) MyCampaigns(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ic/campaigns")
	defer cancel()

	result, err := h.flow.MyCampaigns(ctx, actor)
	if err != nil {
		h.logger.Error("My campaigns failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load campaigns", "MY_CAMPAIGNS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// ListMyLeads lists the caller's leads in one campaign
// @Summary My leads
// @Tags Leads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Campaign ID"
// @Param priority query string false "High, Medium or Low"
// @Param status query string false "Lead status"
// @Success 200 {object} dto.APIResponse{data=dto.ListMyLeadsResponse}
// @Router /api/v1/ic/campaigns/{id}/leads [get]
func (h *LeadHandler) ListMyLeads(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.ListMyLeadsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	req.CampaignID = c.Params("id")
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ic/campaigns/:id/leads")
	defer cancel()

	result, err := h.flow.ListMyLeads(ctx, actor, &req)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "No leads assigned to you in this campaign", "CAMPAIGN_ACCESS_DENIED", nil)
		}
		var be *businessflow.BusinessError
		if errors.As(err, &be) && be.Code == "LIST_LEADS_VALIDATION_FAILED" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead filter", "INVALID_FILTER", be.Err.Error())
		}
		h.logger.Error("List leads failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load leads", "LIST_LEADS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Leads retrieved successfully", result)
}

// SaveContactEdits applies a batch of contact updates; one invalid row rejects the whole batch
// @Summary Save contact edits
// @Tags Leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body dto.SaveContactEditsRequest true "Edits"
// @Success 200 {object} dto.APIResponse{data=dto.SaveContactEditsResponse}
// @Failure 422 {object} dto.APIResponse{error=dto.ErrorDetail{details=dto.ContactViolations}} "Status rules violated"
// @Router /api/v1/ic/campaigns/{id}/leads [put]
func (h *LeadHandler) SaveContactEdits(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.SaveContactEditsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CampaignID = c.Params("id")
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ic/campaigns/:id/leads")
	defer cancel()

	result, err := h.flow.SaveContactEdits(ctx, actor, &req)
	if err != nil {
		if verr, ok := businessflow.AsContactValidationError(err); ok {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, verr.Error(), "CONTACT_VALIDATION_FAILED", businessflow.ToContactViolations(verr))
		}
		if businessflow.IsNoContactEdits(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No edits submitted", "NO_CONTACT_EDITS", nil)
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", err.Error())
		}
		if businessflow.IsLeadAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Lead is not assigned to you in this campaign", "LEAD_ACCESS_DENIED", err.Error())
		}
		if handled, rerr := h.storeErrorResponse(c, err); handled {
			return rerr
		}
		h.logger.Error("Save contact edits failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save contact edits", "SAVE_CONTACT_EDITS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contact edits saved", result)
}
