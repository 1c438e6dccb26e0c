package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/logger"
	"kopilka/internal/middleware"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

// getUserID extracts the calling person's user ID from the Gin context.
// Tooling calls carry no user and get ErrUnauthorized.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, apperrors.WithMessage(apperrors.ErrUnauthorized, "This action needs a user identity")
	}
	return userID.(uint), nil
}

// optionalUserID is getUserID for operations that also accept tooling calls.
func optionalUserID(c *gin.Context) *uint {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	id := userID.(uint)
	return &id
}

// getHouseholdID extracts the caller's household set by HouseholdContext.
func getHouseholdID(c *gin.Context) (uint, error) {
	householdID, exists := c.Get(middleware.HouseholdIDKey)
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	return householdID.(uint), nil
}

// getRole returns the caller's role, or "" when none was resolved.
func getRole(c *gin.Context) models.MemberRole {
	role, _ := c.Get(middleware.RoleKey)
	r, _ := role.(models.MemberRole)
	return r
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// parseWindow reads the days and user_id query parameters of a report.
func parseWindow(c *gin.Context, defaultDays int) (services.ReportWindow, error) {
	window := services.ReportWindow{Days: defaultDays}
	if v := c.Query("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return window, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be a positive integer")
		}
		window.Days = days
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return window, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid user_id")
		}
		uid := uint(id)
		window.UserID = &uid
	}
	return window, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}

// ErrorResponse is the envelope of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
