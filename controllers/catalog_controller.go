package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
)

// ListServices handles GET /api/v1/services - service categories with
// their services, in display order
func ListServices(c *gin.Context) {
	db := config.GetDB()

	var categories []models.ServiceCategory
	err := db.Preload("Services").Order("\"order\" asc, name asc").Find(&categories).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load services")
		return
	}

	respondData(c, http.StatusOK, categories)
}

// ListAcademicLevels handles GET /api/v1/academic-levels
func ListAcademicLevels(c *gin.Context) {
	db := config.GetDB()

	var levels []models.AcademicLevel
	if err := db.Order("\"order\" asc").Find(&levels).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load academic levels")
		return
	}

	respondData(c, http.StatusOK, levels)
}

// ListDeadlines handles GET /api/v1/deadlines
func ListDeadlines(c *gin.Context) {
	db := config.GetDB()

	var deadlines []models.Deadline
	if err := db.Order("hours asc").Find(&deadlines).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load deadlines")
		return
	}

	respondData(c, http.StatusOK, deadlines)
}

// OrderFormData handles GET /api/v1/order-form-data - everything the order
// form needs in one round trip
func OrderFormData(c *gin.Context) {
	db := config.GetDB()

	var categories []models.ServiceCategory
	if err := db.Preload("Services").Order("\"order\" asc, name asc").Find(&categories).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load form data")
		return
	}

	var levels []models.AcademicLevel
	if err := db.Order("\"order\" asc").Find(&levels).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load form data")
		return
	}

	var deadlines []models.Deadline
	if err := db.Order("hours asc").Find(&deadlines).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load form data")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"service_categories": categories,
		"academic_levels":    levels,
		"deadlines":          deadlines,
	})
}
