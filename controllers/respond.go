package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/services"
)

// respondData writes the standard success envelope
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondValidationError includes binding details alongside the message
func respondValidationError(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": details,
		},
	})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var preconditionErr *services.PreconditionError
	var configurationErr *services.ConfigurationError

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message)
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Message)
	case errors.As(err, &preconditionErr):
		respondError(c, http.StatusConflict, "PRECONDITION_FAILED", preconditionErr.Message)
	case errors.As(err, &configurationErr):
		respondError(c, http.StatusInternalServerError, "CONFIGURATION_ERROR", configurationErr.Message)
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

// paramID parses a numeric path parameter. It writes the error response
// itself; callers return immediately on !ok.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// mustUserID reads the authenticated user ID set by RequireAuth. It writes
// the error response itself; callers return immediately on !ok.
func mustUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return 0, false
	}
	return userID.(uint), true
}
