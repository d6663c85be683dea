package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
	"github.com/stansam/Tuned/utils"
)

// orderSortColumns is the allow-list for admin order sorting. Sort keys
// map to column expressions; anything else is rejected, never interpolated.
var orderSortColumns = map[string]string{
	"created_at":   "created_at",
	"due_date":     "due_date",
	"total_price":  "total_price",
	"status":       "status",
	"order_number": "order_number",
	"client_id":    "client_id",
}

// allowedStatusUpdates is the set of statuses an admin may set directly
var allowedStatusUpdates = map[string]bool{
	models.OrderStatusPending:   true,
	models.OrderStatusActive:    true,
	models.OrderStatusRevision:  true,
	models.OrderStatusCancelled: true,
	models.OrderStatusCompleted: true,
}

// AdminListOrders handles GET /api/v1/admin/orders
func AdminListOrders(c *gin.Context) {
	db := config.GetDB()
	services.RunSweeps(db, time.Now())

	sortKey := c.DefaultQuery("sort", "created_at")
	column, ok := orderSortColumns[sortKey]
	if !ok {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Unknown sort key %q", sortKey))
		return
	}
	direction := "desc"
	if c.Query("direction") == "asc" {
		direction = "asc"
	}

	q := db.Preload("Client").Order(column + " " + direction)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if clientID, err := strconv.ParseUint(c.Query("client_id"), 10, 32); err == nil {
		q = q.Where("client_id = ?", uint(clientID))
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("order_number LIKE ? OR title LIKE ?", pattern, pattern)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	respondData(c, http.StatusOK, orders)
}

// AdminGetOrder handles GET /api/v1/admin/orders/:id
func AdminGetOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	var files []models.OrderFile
	db.Where("order_id = ?", order.ID).Find(&files)

	var comments []models.OrderComment
	db.Preload("User").Where("order_id = ?", order.ID).Order("created_at asc").Find(&comments)

	var deliveries []models.OrderDelivery
	db.Preload("Files").Where("order_id = ?", order.ID).Order("created_at asc").Find(&deliveries)

	var payments []models.Payment
	db.Where("order_id = ?", order.ID).Order("created_at asc").Find(&payments)

	respondData(c, http.StatusOK, gin.H{
		"order":      order,
		"files":      files,
		"comments":   comments,
		"deliveries": deliveries,
		"payments":   payments,
	})
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateOrderStatus handles PUT /api/v1/admin/orders/:id/status
func AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if !allowedStatusUpdates[req.Status] {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Status %q cannot be set directly", req.Status))
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if order.Status == req.Status {
		respondData(c, http.StatusOK, order)
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.OrderStatusCompleted {
		now := time.Now()
		updates["completion_date"] = now
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update status")
		return
	}

	services.HandleOrderStatusChange(db, order.ID, req.Status)

	respondData(c, http.StatusOK, order)
}

// AdminAddOrderComment handles POST /api/v1/admin/orders/:id/comments
func AdminAddOrderComment(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	comment := models.OrderComment{
		OrderID: order.ID,
		UserID:  adminID,
		Message: req.Message,
		IsAdmin: true,
	}
	if err := db.Create(&comment).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add comment")
		return
	}

	respondData(c, http.StatusCreated, comment)
}

// AdminDeliverOrder handles POST /api/v1/admin/orders/:id/deliveries. The
// multipart form carries the completed work; per-file type and description
// fields are matched by index.
func AdminDeliverOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		respondValidationError(c, "At least one delivery file is required")
		return
	}

	// All files must pass validation before the order advances
	for _, fileHeader := range form.File["files"] {
		if err := utils.ValidateUpload(fileHeader); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
			return
		}
	}

	db := config.GetDB()
	delivery, revised, err := services.DeliverOrder(db, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	fileTypes := form.Value["file_types"]
	descriptions := form.Value["descriptions"]

	for i, fileHeader := range form.File["files"] {
		key, err := services.GetFileStorage().Save(fileHeader, "deliveries")
		if err != nil {
			respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store file")
			return
		}

		fileType := models.DeliveryFileTypeDelivery
		if i < len(fileTypes) && fileTypes[i] != "" {
			fileType = fileTypes[i]
		}
		description := ""
		if i < len(descriptions) {
			description = descriptions[i]
		}

		record := models.OrderDeliveryFile{
			DeliveryID:       delivery.ID,
			Filename:         key,
			OriginalFilename: fileHeader.Filename,
			FilePath:         key,
			FileType:         fileType,
			FileFormat:       utils.FileFormat(fileHeader.Filename),
			Description:      description,
		}
		if err := db.Create(&record).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record file")
			return
		}
	}

	services.HandleOrderDelivery(db, orderID, revised)

	if err := db.Preload("Files").First(delivery, delivery.ID).Error; err != nil {
		log.Printf("Failed to reload delivery %d: %v", delivery.ID, err)
	}

	respondData(c, http.StatusCreated, delivery)
}

// ExtensionRequestBody represents the request body for a deadline extension
type ExtensionRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminRequestExtension handles POST /api/v1/admin/orders/:id/extension -
// staff ask the client for more time
func AdminRequestExtension(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ExtensionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	ticket, err := services.RequestDeadlineExtension(db, orderID, adminID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.HandleDeadlineExtensionRequest(db, orderID, req.Reason)

	respondData(c, http.StatusCreated, ticket)
}

// UpdateDueDateRequest represents the request body for setting a new due date
type UpdateDueDateRequest struct {
	DueDate time.Time `json:"due_date" binding:"required"`
}

// AdminUpdateDueDate handles PUT /api/v1/admin/orders/:id/due-date - apply
// a granted extension and clear the pending flag
func AdminUpdateDueDate(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	err := db.Model(&order).Updates(map[string]interface{}{
		"due_date":            req.DueDate,
		"extension_requested": false,
	}).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update due date")
		return
	}

	respondData(c, http.StatusOK, order)
}
