// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/app/middleware"
	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/amirphl/lead-connect/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type requestContextKey string

const defaultRequestTimeout = 30 * time.Second

// baseHandler carries what every handler shares: the validator, the logger and the response helpers
type baseHandler struct {
	validator      *validator.Validate
	logger         *zap.Logger
	requestTimeout time.Duration
}

func newBaseHandler(logger *zap.Logger, requestTimeout time.Duration) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return baseHandler{
		validator:      validator.New(),
		logger:         logger,
		requestTimeout: requestTimeout,
	}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout.
// The caller must call the returned cancel function.
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	ctx = context.WithValue(ctx, requestContextKey(businessflow.RequestIDKey), c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, requestContextKey("ip_address"), c.IP())
	ctx = context.WithValue(ctx, requestContextKey("endpoint"), endpoint)
	return ctx, cancel
}

// validate runs struct validation and writes the 400 response when it fails
func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	err := h.validator.Struct(req)
	if err == nil {
		return true, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", messages)
}

// actor returns the authenticated user or writes a 401
func (h *baseHandler) actor(c fiber.Ctx) (models.Actor, bool, error) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return models.Actor{}, false, h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	return actor, true, nil
}

// storeErrorResponse maps errors raised by the write path itself
func (h *baseHandler) storeErrorResponse(c fiber.Ctx, err error) (bool, error) {
	if businessflow.IsLockNotAcquired(err) {
		return true, h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Data store is busy, please retry", "STORE_BUSY", nil)
	}
	if businessflow.IsCoordinatorClosed(err) {
		return true, h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Server is shutting down", "SHUTTING_DOWN", nil)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, h.ErrorResponse(c, fiber.StatusGatewayTimeout, "Request timed out", "REQUEST_TIMEOUT", nil)
	}
	return false, nil
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "datetime":
		return err.Field() + " must be a date in the format YYYY-MM-DD"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
