package handlers

import (
	"time"

	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// DashboardHandler serves the admin and representative dashboards
type DashboardHandler struct {
	baseHandler
	flow businessflow.DashboardFlow
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(flow businessflow.DashboardFlow, logger *zap.Logger, requestTimeout time.Duration) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(logger, requestTimeout),
		flow:        flow,
	}
}

// AdminDashboard
// @Summary Admin dashboard
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse}
// @Router /api/v1/admin/dashboard [get]
func (h *DashboardHandler) AdminDashboard(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/dashboard")
	defer cancel()

	result, err := h.flow.AdminDashboard(ctx)
	if err != nil {
		h.logger.Error("Admin dashboard failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build dashboard", "DASHBOARD_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}

// ICDashboard
// @Summary Representative dashboard
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ICDashboardResponse}
// @Router /api/v1/ic/dashboard [get]
func (h *DashboardHandler) ICDashboard(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ic/dashboard")
	defer cancel()

	result, err := h.flow.ICDashboard(ctx, actor)
	if err != nil {
		h.logger.Error("IC dashboard failed", zap.Error(err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build dashboard", "DASHBOARD_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}
