package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/services"
)

// CalculatePriceRequest represents the request body for a price quote.
// deadline_data carries the hours until the deadline; word_count is
// optional and a missing or zero value prices as a single page.
type CalculatePriceRequest struct {
	ServiceID       uint    `json:"service_id" binding:"required"`
	AcademicLevelID uint    `json:"academic_level_id" binding:"required"`
	DeadlineData    float64 `json:"deadline_data" binding:"required"`
	WordCount       int     `json:"word_count"`
	ReportType      string  `json:"report_type"`
}

// CalculatePrice handles POST /api/v1/calculate-price. This endpoint keeps
// the flat response shape clients already parse: the quote object on
// success, {"error": "..."} on failure.
func CalculatePrice(c *gin.Context) {
	var req CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	quote, err := services.CalculatePrice(config.GetDB(), services.PriceInput{
		ServiceID:          req.ServiceID,
		AcademicLevelID:    req.AcademicLevelID,
		HoursUntilDeadline: req.DeadlineData,
		WordCount:          req.WordCount,
		ReportType:         req.ReportType,
	})
	if err != nil {
		var validationErr *services.ValidationError
		var notFoundErr *services.NotFoundError
		var configurationErr *services.ConfigurationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		case errors.As(err, &notFoundErr):
			c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
		case errors.As(err, &configurationErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": configurationErr.Message})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to calculate price"})
		}
		return
	}

	c.JSON(http.StatusOK, quote)
}
