package controllers

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
)

// DownloadOrderFile handles GET /api/v1/files/orders/:id - stream a
// client-submitted attachment. The database row is the source of truth
// for the download filename.
func DownloadOrderFile(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var file models.OrderFile
	if err := db.Preload("Order").First(&file, fileID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		return
	}

	if !middleware.IsAdmin(c) && file.Order.ClientID != callerID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	streamFile(c, file.FilePath, file.OriginalFilename)
}

// DownloadDeliveryFile handles GET /api/v1/files/deliveries/:id - stream
// a staff-delivered file
func DownloadDeliveryFile(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var file models.OrderDeliveryFile
	if err := db.First(&file, fileID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		return
	}

	var delivery models.OrderDelivery
	if err := db.Preload("Order").First(&delivery, file.DeliveryID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Delivery not found")
		return
	}

	if !middleware.IsAdmin(c) && delivery.Order.ClientID != callerID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	streamFile(c, file.FilePath, file.OriginalFilename)
}

func streamFile(c *gin.Context, key, downloadName string) {
	reader, err := services.GetFileStorage().Open(key)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Stored file is missing")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("Error streaming file %q: %v", key, err)
	}
}
