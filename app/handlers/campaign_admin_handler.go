package handlers

import (
	"strings"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/amirphl/lead-connect/utils"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// CampaignAdminHandlerInterface defines the contract for admin campaign handlers
type CampaignAdminHandlerInterface interface {
	NextCampaignID(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	CreateCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	DeleteCampaign(c fiber.Ctx) error
}

// CampaignAdminHandler handles campaign administration
type CampaignAdminHandler struct {
	baseHandler
	flow businessflow.AdminCampaignFlow
}

// NewCampaignAdminHandler creates a new admin campaign handler
func NewCampaignAdminHandler(flow businessflow.AdminCampaignFlow, logger *zap.Logger, requestTimeout time.Duration) *CampaignAdminHandler {
	return &CampaignAdminHandler{
		baseHandler: newBaseHandler(logger, requestTimeout),
		flow:        flow,
	}
}

// NextCampaignID previews the id the next campaign will get
// @Summary Next campaign id
// @Tags Admin Campaigns
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.NextCampaignIDResponse}
// @Router /api/v1/admin/campaigns/next-id [get]
func (h *CampaignAdminHandler) NextCampaignID(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/campaigns/next-id")
	defer cancel()

	result, err := h.flow.NextCampaignID(ctx)
	if err != nil {
		h.logger.Error("Next campaign id failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to allocate campaign id", "NEXT_CAMPAIGN_ID_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Next campaign id", result)
}

// ListCampaigns lists every campaign with its lead count
// @Summary List campaigns
// @Tags Admin Campaigns
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse}
// @Router /api/v1/admin/campaigns [get]
func (h *CampaignAdminHandler) ListCampaigns(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/campaigns")
	defer cancel()

	result, err := h.flow.ListCampaigns(ctx)
	if err != nil {
		h.logger.Error("List campaigns failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list campaigns", "LIST_CAMPAIGNS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// GetCampaign returns one campaign
// @Summary Get campaign
// @Tags Admin Campaigns
// @Security BearerAuth
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignResponse}
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/admin/campaigns/{id} [get]
func (h *CampaignAdminHandler) GetCampaign(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/campaigns/:id")
	defer cancel()

	result, err := h.flow.GetCampaign(ctx, c.Params("id"))
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		h.logger.Error("Get campaign failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get campaign", "GET_CAMPAIGN_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// CreateCampaign creates a campaign from a multipart form carrying the campaign fields and the lead file
// @Summary Create campaign
// @Tags Admin Campaigns
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param campaign_name formData string true "Campaign name"
// @Param campaign_type formData string true "IPO, Insurance, Bond or Other"
// @Param description formData string true "Description"
// @Param start_date formData string true "YYYY-MM-DD"
// @Param end_date formData string true "YYYY-MM-DD"
// @Param leads_file formData file true "CSV or XLSX lead file"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCampaignResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/admin/campaigns [post]
func (h *CampaignAdminHandler) CreateCampaign(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	req := dto.CreateCampaignRequest{
		CampaignName: strings.TrimSpace(c.FormValue("campaign_name")),
		CampaignType: strings.TrimSpace(c.FormValue("campaign_type")),
		Description:  strings.TrimSpace(c.FormValue("description")),
		StartDate:    strings.TrimSpace(c.FormValue("start_date")),
		EndDate:      strings.TrimSpace(c.FormValue("end_date")),
		ImagePath:    utils.NilIfEmpty(c.FormValue("image_path")),
		DocumentPath: utils.NilIfEmpty(c.FormValue("document_path")),
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	fileHeader, err := c.FormFile("leads_file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "leads_file is required", "INVALID_FILE", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/campaigns")
	defer cancel()

	result, err := h.flow.CreateCampaign(ctx, actor, &req, businessflow.LeadUploadFile{
		Filename: fileHeader.Filename,
		Content:  file,
	})
	if err != nil {
		if businessflow.IsAdminRequired(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only admins can create campaigns", "ADMIN_REQUIRED", nil)
		}
		if businessflow.IsCampaignValidation(err) || businessflow.IsInvalidDateRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign validation failed", "CAMPAIGN_VALIDATION_FAILED", err.Error())
		}
		if businessflow.IsCampaignIDMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Every row of the lead file must carry the new campaign id", "CAMPAIGN_ID_MISMATCH", err.Error())
		}
		if businessflow.IsInvalidLeadUpload(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Lead file is invalid", "LEAD_UPLOAD_INVALID", err.Error())
		}
		if handled, rerr := h.storeErrorResponse(c, err); handled {
			return rerr
		}
		h.logger.Error("Create campaign failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", "CREATE_CAMPAIGN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// UpdateCampaign changes the name, description or dates of a campaign
// @Summary Update campaign
// @Tags Admin Campaigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body dto.UpdateCampaignRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignResponse}
// @Router /api/v1/admin/campaigns/{id} [put]
func (h *CampaignAdminHandler) UpdateCampaign(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/campaigns/:id")
	defer cancel()

	result, err := h.flow.UpdateCampaign(ctx, actor, c.Params("id"), &req)
	if err != nil {
		if businessflow.IsAdminRequired(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only admins can update campaigns", "ADMIN_REQUIRED", nil)
		}
		if businessflow.IsAdminPasswordMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Admin password is incorrect", "ADMIN_PASSWORD_MISMATCH", nil)
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignValidation(err) || businessflow.IsInvalidDateRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign validation failed", "CAMPAIGN_VALIDATION_FAILED", err.Error())
		}
		if handled, rerr := h.storeErrorResponse(c, err); handled {
			return rerr
		}
		h.logger.Error("Update campaign failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", "UPDATE_CAMPAIGN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign updated successfully", result)
}

// DeleteCampaign removes a campaign and all of its leads
// @Summary Delete campaign
// @Tags Admin Campaigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body dto.DeleteCampaignRequest true "Confirmation"
// @Success 200 {object} dto.APIResponse
// @Router /api/v1/admin/campaigns/{id} [delete]
func (h *CampaignAdminHandler) DeleteCampaign(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.DeleteCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/campaigns/:id")
	defer cancel()

	if err := h.flow.DeleteCampaign(ctx, actor, c.Params("id"), &req); err != nil {
		if businessflow.IsAdminRequired(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only admins can delete campaigns", "ADMIN_REQUIRED", nil)
		}
		if businessflow.IsAdminPasswordMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Admin password is incorrect", "ADMIN_PASSWORD_MISMATCH", nil)
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsConfirmNameMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Confirmation does not match the campaign name", "CONFIRM_NAME_MISMATCH", nil)
		}
		if handled, rerr := h.storeErrorResponse(c, err); handled {
			return rerr
		}
		h.logger.Error("Delete campaign failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", "DELETE_CAMPAIGN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign deleted successfully", fiber.Map{"campaign_id": c.Params("id")})
}
