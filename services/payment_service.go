package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stansam/Tuned/models"
	"gorm.io/gorm"
)

// RecordPayment records a manual payment against an order. The payment, its
// invoice, and the order's paid/active flip commit in one transaction.
func RecordPayment(db *gorm.DB, orderID, adminID uint, amount float64, method string, paymentDate time.Time) (*models.Payment, error) {
	if amount <= 0 {
		return nil, &ValidationError{Message: "Invalid payment amount"}
	}

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, &NotFoundError{Message: "Order not found"}
	}
	if order.IsTerminal() {
		return nil, &PreconditionError{Message: "Cannot record a payment on a closed order"}
	}

	if method == "" {
		method = "manual"
	}

	var payment models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		payment = models.Payment{
			OrderID:       order.ID,
			UserID:        order.ClientID,
			Amount:        amount,
			Method:        method,
			TransactionID: fmt.Sprintf("%s-%s", order.OrderNumber, strings.ToUpper(uuid.New().String()[:8])),
			Status:        models.PaymentCompleted,
			PaymentDate:   &paymentDate,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		invoice := models.Invoice{
			OrderID:   order.ID,
			UserID:    order.ClientID,
			PaymentID: payment.ID,
			Subtotal:  order.TotalPrice,
			Total:     order.TotalPrice,
			DueDate:   order.DueDate,
			Paid:      true,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"paid":           true,
			"payment_status": models.PaymentStatusPaid,
		}
		// Payment completion activates a pending order; other states keep
		// their position in the lifecycle.
		if order.Status == models.OrderStatusPending {
			updates["status"] = models.OrderStatusActive
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// UpdatePaymentStatus changes a payment's status and keeps the order's
// derived payment status in sync
func UpdatePaymentStatus(db *gorm.DB, paymentID uint, newStatus string) (*models.Payment, error) {
	switch newStatus {
	case models.PaymentPending, models.PaymentCompleted, models.PaymentFailed, models.PaymentRefunded:
	default:
		return nil, &ValidationError{Message: "Invalid status value"}
	}

	var payment models.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		return nil, &NotFoundError{Message: "Payment not found"}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.PaymentCompleted && payment.PaymentDate == nil {
			now := time.Now()
			updates["payment_date"] = now
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		derived := map[string]string{
			models.PaymentCompleted: models.PaymentStatusPaid,
			models.PaymentRefunded:  models.PaymentStatusRefunded,
			models.PaymentPending:   models.PaymentStatusPending,
			models.PaymentFailed:    models.PaymentStatusUnpaid,
		}
		return tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
			Update("payment_status", derived[newStatus]).Error
	})
	if err != nil {
		return nil, err
	}

	payment.Status = newStatus
	return &payment, nil
}

// CreateRefund processes a full or partial refund. A full refund demotes
// both the payment and the order's derived payment status.
func CreateRefund(db *gorm.DB, paymentID, processedBy uint, amount float64, reason string) (*models.Refund, error) {
	var payment models.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		return nil, &NotFoundError{Message: "Payment not found"}
	}
	if payment.Status != models.PaymentCompleted {
		return nil, &PreconditionError{Message: "Only completed payments can be refunded"}
	}
	if amount <= 0 || amount > payment.Amount {
		return nil, &ValidationError{Message: "Invalid refund amount"}
	}

	var refund models.Refund
	err := db.Transaction(func(tx *gorm.DB) error {
		refund = models.Refund{
			PaymentID:   paymentID,
			Amount:      amount,
			Reason:      reason,
			ProcessedBy: processedBy,
			Status:      "processed",
			RefundDate:  time.Now(),
		}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}

		if amount == payment.Amount {
			if err := tx.Model(&payment).Update("status", models.PaymentRefunded).Error; err != nil {
				return err
			}
			return tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
				Update("payment_status", models.PaymentStatusRefunded).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &refund, nil
}

// ConfirmClientPayment records a client's report that payment was made by
// opening a client-initiated support ticket for staff to verify
func ConfirmClientPayment(db *gorm.DB, orderID, clientID uint, method, reference string) (*models.SupportTicket, error) {
	order, err := GetClientOrder(db, orderID, clientID)
	if err != nil {
		return nil, err
	}
	if order.Paid {
		return nil, &PreconditionError{Message: "Order is already paid"}
	}

	ticket := models.SupportTicket{
		OrderID:   orderID,
		UserID:    clientID,
		Subject:   "Payment Confirmation",
		Message:   fmt.Sprintf("Client reports payment via %s (reference: %s)", method, reference),
		Direction: models.TicketClientInitiated,
		Status:    models.TicketStatusOpen,
	}
	if err := db.Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}
