package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
)

// ticketStatusUpdates is the allow-list for ticket status changes
var ticketStatusUpdates = map[string]bool{
	models.TicketStatusOpen:       true,
	models.TicketStatusInProgress: true,
	models.TicketStatusClosed:     true,
}

// AdminListTickets handles GET /api/v1/admin/tickets
func AdminListTickets(c *gin.Context) {
	db := config.GetDB()

	q := db.Preload("User").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if direction := c.Query("direction"); direction != "" {
		q = q.Where("direction = ?", direction)
	}

	var tickets []models.SupportTicket
	if err := q.Find(&tickets).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load tickets")
		return
	}

	respondData(c, http.StatusOK, tickets)
}

// UpdateTicketStatusRequest represents the request body for ticket triage
type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateTicketStatus handles PUT /api/v1/admin/tickets/:id/status
func AdminUpdateTicketStatus(c *gin.Context) {
	ticketID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if !ticketStatusUpdates[req.Status] {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown ticket status")
		return
	}

	db := config.GetDB()
	var ticket models.SupportTicket
	if err := db.First(&ticket, ticketID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found")
		return
	}

	if err := db.Model(&ticket).Update("status", req.Status).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update ticket")
		return
	}

	respondData(c, http.StatusOK, ticket)
}

// AdminDeleteTicket handles DELETE /api/v1/admin/tickets/:id
func AdminDeleteTicket(c *gin.Context) {
	ticketID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var ticket models.SupportTicket
	if err := db.First(&ticket, ticketID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found")
		return
	}

	if err := db.Delete(&ticket).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete ticket")
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
