package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
)

// RecordPaymentRequest represents the request body for recording a payment
type RecordPaymentRequest struct {
	OrderID     uint       `json:"order_id" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Method      string     `json:"method" binding:"required"`
	PaymentDate *time.Time `json:"payment_date"`
}

// AdminRecordPayment handles POST /api/v1/admin/payments. Payments are
// recorded manually by staff after verifying the transfer out of band.
func AdminRecordPayment(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	db := config.GetDB()
	payment, err := services.RecordPayment(db, req.OrderID, adminID, req.Amount, req.Method, paymentDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	services.HandlePaymentCompletion(db, req.OrderID)

	respondData(c, http.StatusCreated, payment)
}

// AdminListPayments handles GET /api/v1/admin/payments
func AdminListPayments(c *gin.Context) {
	db := config.GetDB()

	q := db.Preload("Order").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if orderID, err := strconv.ParseUint(c.Query("order_id"), 10, 32); err == nil {
		q = q.Where("order_id = ?", uint(orderID))
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load payments")
		return
	}

	respondData(c, http.StatusOK, payments)
}

// AdminGetPayment handles GET /api/v1/admin/payments/:id
func AdminGetPayment(c *gin.Context) {
	paymentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var payment models.Payment
	if err := db.Preload("Order").First(&payment, paymentID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}

	var invoice models.Invoice
	db.Where("payment_id = ?", payment.ID).First(&invoice)

	var refunds []models.Refund
	db.Where("payment_id = ?", payment.ID).Find(&refunds)

	respondData(c, http.StatusOK, gin.H{
		"payment": payment,
		"invoice": invoice,
		"refunds": refunds,
	})
}

// UpdatePaymentStatusRequest represents the request body for a payment
// status change
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdatePaymentStatus handles PUT /api/v1/admin/payments/:id/status
func AdminUpdatePaymentStatus(c *gin.Context) {
	paymentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	payment, err := services.UpdatePaymentStatus(db, paymentID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if payment.Status == models.PaymentCompleted {
		services.HandlePaymentCompletion(db, payment.OrderID)
	}

	respondData(c, http.StatusOK, payment)
}

// RefundRequest represents the request body for issuing a refund
type RefundRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"required"`
}

// AdminRefundPayment handles POST /api/v1/admin/payments/:id/refund
func AdminRefundPayment(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	paymentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	refund, err := services.CreateRefund(db, paymentID, adminID, req.Amount, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, refund)
}

// ConfirmPaymentRequest represents the client's declaration that a payment
// was sent
type ConfirmPaymentRequest struct {
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference"`
}

// ConfirmClientPayment handles POST /api/v1/orders/:id/payment/confirm.
// The client's declaration opens a ticket for staff to verify; nothing is
// charged and no order state changes until staff record the payment.
func ConfirmClientPayment(c *gin.Context) {
	clientID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	ticket, err := services.ConfirmClientPayment(db, orderID, clientID, req.Method, req.Reference)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, ticket)
}

// ClientPaymentStatus handles GET /api/v1/orders/:id/payment/status
func ClientPaymentStatus(c *gin.Context) {
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

	var payments []models.Payment
	db.Where("order_id = ?", order.ID).Order("created_at desc").Find(&payments)

	respondData(c, http.StatusOK, gin.H{
		"order_number":   order.OrderNumber,
		"paid":           order.Paid,
		"payment_status": order.PaymentStatus,
		"total_price":    order.TotalPrice,
		"payments":       payments,
	})
}
