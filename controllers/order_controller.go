package controllers

import (
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

// CreateClientOrder handles POST /api/v1/orders. The body is multipart so
// the client can attach instruction files in the same request. The price is
// always re-resolved server side.
func CreateClientOrder(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}

	serviceID, err1 := strconv.ParseUint(c.PostForm("service_id"), 10, 32)
	levelID, err2 := strconv.ParseUint(c.PostForm("academic_level_id"), 10, 32)
	hours, err3 := strconv.ParseFloat(c.PostForm("hours_until_deadline"), 64)
	wordCount, err4 := strconv.Atoi(c.PostForm("word_count"))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		respondValidationError(c, "service_id, academic_level_id, hours_until_deadline and word_count are required")
		return
	}

	db := config.GetDB()
	order, err := services.CreateOrder(db, services.CreateOrderInput{
		ClientID:           clientID,
		ServiceID:          uint(serviceID),
		AcademicLevelID:    uint(levelID),
		HoursUntilDeadline: hours,
		Title:              c.PostForm("title"),
		Description:        c.PostForm("description"),
		WordCount:          wordCount,
		FormatStyle:        c.PostForm("format_style"),
		ReportType:         c.PostForm("report_type"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Attachments are best effort; a failed file save does not undo the order
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, fileHeader := range form.File["files"] {
			if err := utils.ValidateUpload(fileHeader); err != nil {
				log.Printf("Skipping invalid attachment %q on order %s: %v",
					fileHeader.Filename, order.OrderNumber, err)
				continue
			}
			key, err := services.GetFileStorage().Save(fileHeader, "orders")
			if err != nil {
				log.Printf("Failed to store attachment %q on order %s: %v",
					fileHeader.Filename, order.OrderNumber, err)
				continue
			}
			record := models.OrderFile{
				OrderID:          order.ID,
				Filename:         key,
				OriginalFilename: fileHeader.Filename,
				FilePath:         key,
			}
			if err := db.Create(&record).Error; err != nil {
				log.Printf("Failed to record attachment %q on order %s: %v",
					fileHeader.Filename, order.OrderNumber, err)
			}
		}
	}

	services.HandleNewOrderCreation(db, order.ID)

	respondData(c, http.StatusCreated, order)
}

// ListClientOrders handles GET /api/v1/orders. Time-based transitions are
// swept before reading so listings never show a stale overdue status.
func ListClientOrders(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	services.RunSweeps(db, time.Now())

	q := db.Where("client_id = ?", clientID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	respondData(c, http.StatusOK, orders)
}

// GetOrderDetail handles GET /api/v1/orders/:id
func GetOrderDetail(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	services.RunSweeps(db, time.Now())

	order, err := services.GetClientOrder(db, orderID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var files []models.OrderFile
	db.Where("order_id = ?", order.ID).Find(&files)

	var comments []models.OrderComment
	db.Preload("User").Where("order_id = ?", order.ID).Order("created_at asc").Find(&comments)

	var deliveries []models.OrderDelivery
	db.Preload("Files").Where("order_id = ?", order.ID).Order("created_at asc").Find(&deliveries)

	respondData(c, http.StatusOK, gin.H{
		"order":      order,
		"files":      files,
		"comments":   comments,
		"deliveries": deliveries,
	})
}

// CompleteOrder handles POST /api/v1/orders/:id/complete - the client
// confirms receipt of a delivered order
func CompleteOrder(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	order, err := services.MarkOrderComplete(db, orderID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.HandleOrderCompletionByClient(db, order.ID)

	respondData(c, http.StatusOK, order)
}

// RevisionRequest represents the request body for a revision
type RevisionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RequestRevision handles POST /api/v1/orders/:id/revision
func RequestRevision(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	order, err := services.RequestRevision(db, orderID, clientID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.HandleRevisionRequest(db, order.ID, req.Reason)

	respondData(c, http.StatusOK, order)
}

// CommentRequest represents the request body for an order comment
type CommentRequest struct {
	Message string `json:"message" binding:"required"`
}

// AddOrderComment handles POST /api/v1/orders/:id/comments
func AddOrderComment(c *gin.Context) {
	clientID, ok := mustUserID(c)
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
	order, err := services.GetClientOrder(db, orderID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	comment := models.OrderComment{
		OrderID: order.ID,
		UserID:  clientID,
		Message: req.Message,
		IsAdmin: false,
	}
	if err := db.Create(&comment).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add comment")
		return
	}

	respondData(c, http.StatusCreated, comment)
}

// ListOrderComments handles GET /api/v1/orders/:id/comments
func ListOrderComments(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	if _, err := services.GetClientOrder(db, orderID, clientID); err != nil {
		respondServiceError(c, err)
		return
	}

	var comments []models.OrderComment
	err := db.Preload("User").Where("order_id = ?", orderID).
		Order("created_at asc").Find(&comments).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load comments")
		return
	}

	respondData(c, http.StatusOK, comments)
}

// UploadOrderFiles handles POST /api/v1/orders/:id/files - attach more
// instruction files to an existing order
func UploadOrderFiles(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	order, err := services.GetClientOrder(db, orderID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.IsTerminal() {
		respondError(c, http.StatusConflict, "PRECONDITION_FAILED", "Cannot attach files to a closed order")
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		respondValidationError(c, "At least one file is required")
		return
	}

	var saved []models.OrderFile
	for _, fileHeader := range form.File["files"] {
		if err := utils.ValidateUpload(fileHeader); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
			return
		}
		key, err := services.GetFileStorage().Save(fileHeader, "orders")
		if err != nil {
			respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store file")
			return
		}
		record := models.OrderFile{
			OrderID:          order.ID,
			Filename:         key,
			OriginalFilename: fileHeader.Filename,
			FilePath:         key,
		}
		if err := db.Create(&record).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record file")
			return
		}
		saved = append(saved, record)
	}

	services.HandleOrderFilesUpload(db, order.ID, len(saved))

	respondData(c, http.StatusCreated, saved)
}

// UpdateDeadlineRequest represents the request body for a due date change
type UpdateDeadlineRequest struct {
	HoursUntilDeadline float64 `json:"hours_until_deadline" binding:"required,gt=0"`
}

// UpdateOrderDeadline handles PUT /api/v1/orders/:id/deadline. Only unpaid
// pending orders can be rescheduled; the price is re-resolved against the
// new urgency tier.
func UpdateOrderDeadline(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	order, err := services.GetClientOrder(db, orderID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.Status != models.OrderStatusPending || order.Paid {
		respondError(c, http.StatusConflict, "PRECONDITION_FAILED",
			"Only unpaid pending orders can be rescheduled")
		return
	}

	quote, err := services.CalculatePrice(db, services.PriceInput{
		ServiceID:          order.ServiceID,
		AcademicLevelID:    order.AcademicLevelID,
		HoursUntilDeadline: req.HoursUntilDeadline,
		WordCount:          order.WordCount,
		ReportType:         order.ReportType,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	dueDate := now.Add(time.Duration(req.HoursUntilDeadline * float64(time.Hour)))
	err = db.Model(order).Updates(map[string]interface{}{
		"deadline_id": quote.SelectedDeadline.ID,
		"total_price": quote.TotalPrice,
		"due_date":    dueDate,
	}).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update deadline")
		return
	}

	services.HandleClientDeadlineChange(db, order.ID)

	respondData(c, http.StatusOK, gin.H{
		"order": order,
		"quote": quote,
	})
}
