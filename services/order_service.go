package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stansam/Tuned/models"
	"gorm.io/gorm"
)

// GenerateOrderNumber produces a unique human-readable order number
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"),
		strings.ToUpper(uuid.New().String()[:6]))
}

// CreateOrderInput are the client-supplied fields for order placement.
// The price is always re-resolved server side; client totals are ignored.
type CreateOrderInput struct {
	ClientID           uint
	ServiceID          uint
	AcademicLevelID    uint
	HoursUntilDeadline float64
	Title              string
	Description        string
	WordCount          int
	FormatStyle        string
	ReportType         string
	DueDate            *time.Time
}

// CreateOrder re-resolves the price and persists a new pending order
func CreateOrder(db *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	if input.Title == "" {
		return nil, &ValidationError{Message: "Title is required"}
	}
	if input.WordCount <= 0 {
		return nil, &ValidationError{Message: "Word count must be positive"}
	}

	quote, err := CalculatePrice(db, PriceInput{
		ServiceID:          input.ServiceID,
		AcademicLevelID:    input.AcademicLevelID,
		HoursUntilDeadline: input.HoursUntilDeadline,
		WordCount:          input.WordCount,
		ReportType:         input.ReportType,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dueDate := now.Add(time.Duration(quote.SelectedDeadline.Hours * float64(time.Hour)))
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	order := models.Order{
		OrderNumber:     GenerateOrderNumber(now),
		ClientID:        input.ClientID,
		ServiceID:       input.ServiceID,
		AcademicLevelID: input.AcademicLevelID,
		DeadlineID:      quote.SelectedDeadline.ID,
		Title:           input.Title,
		Description:     input.Description,
		WordCount:       input.WordCount,
		PageCount:       quote.PageCount,
		FormatStyle:     input.FormatStyle,
		ReportType:      input.ReportType,
		Status:          models.OrderStatusPending,
		TotalPrice:      quote.TotalPrice,
		DueDate:         dueDate,
	}
	if err := db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetClientOrder loads an order owned by the given client
func GetClientOrder(db *gorm.DB, orderID, clientID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND client_id = ?", orderID, clientID).First(&order).Error
	if err != nil {
		return nil, &NotFoundError{Message: "Order not found"}
	}
	return &order, nil
}

// IsDelivered reports whether the order has at least one recorded delivery
func IsDelivered(db *gorm.DB, orderID uint) (bool, error) {
	var count int64
	err := db.Model(&models.OrderDelivery{}).Where("order_id = ?", orderID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkOrderComplete confirms receipt on behalf of the client. The order must
// have at least one recorded delivery; a failed attempt mutates nothing.
func MarkOrderComplete(db *gorm.DB, orderID, clientID uint) (*models.Order, error) {
	order, err := GetClientOrder(db, orderID, clientID)
	if err != nil {
		return nil, err
	}

	delivered, err := IsDelivered(db, orderID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, &PreconditionError{Message: "Order has not been delivered yet"}
	}

	now := time.Now()
	err = db.Model(order).Updates(map[string]interface{}{
		"status":          models.OrderStatusCompleted,
		"completion_date": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RequestRevision flips the order into revision and records both the ticket
// and the comment trail in one transaction: if any insert fails, nothing
// persists.
func RequestRevision(db *gorm.DB, orderID, clientID uint, reason string) (*models.Order, error) {
	if reason == "" {
		return nil, &ValidationError{Message: "Revision reason is required"}
	}

	order, err := GetClientOrder(db, orderID, clientID)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		comment := models.OrderComment{
			OrderID: orderID,
			UserID:  clientID,
			Message: fmt.Sprintf("REVISION REQUEST: %s", reason),
			IsAdmin: false,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		ticket := models.SupportTicket{
			OrderID:   orderID,
			UserID:    clientID,
			Subject:   "Revision Request",
			Message:   reason,
			Direction: models.TicketClientInitiated,
			Status:    models.TicketStatusOpen,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", models.OrderStatusRevision).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusRevision
	return order, nil
}

// DeliverOrder records a delivery against the order, creating the delivery
// bundle if missing, and advances active/revision orders to
// "completed pending review". It reports whether this was a revised
// delivery so the caller can fire the right notification path.
func DeliverOrder(db *gorm.DB, orderID uint) (*models.OrderDelivery, bool, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, false, &NotFoundError{Message: "Order not found"}
	}

	revised := order.Status == models.OrderStatusRevision

	var delivery models.OrderDelivery
	err := db.Where("order_id = ?", orderID).First(&delivery).Error
	if err != nil {
		delivery = models.OrderDelivery{
			OrderID:        orderID,
			DeliveryStatus: "delivered",
			DeliveredAt:    time.Now(),
		}
		if err := db.Create(&delivery).Error; err != nil {
			return nil, false, err
		}
	}

	if order.Status == models.OrderStatusActive || order.Status == models.OrderStatusRevision {
		err = db.Model(&order).Update("status", models.OrderStatusPendingReview).Error
		if err != nil {
			return nil, false, err
		}
	}

	return &delivery, revised, nil
}

// RequestDeadlineExtension opens an admin-initiated extension ticket and
// flags the order
func RequestDeadlineExtension(db *gorm.DB, orderID, adminID uint, reason string) (*models.SupportTicket, error) {
	if reason == "" {
		return nil, &ValidationError{Message: "Extension reason is required"}
	}

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, &NotFoundError{Message: "Order not found"}
	}
	if order.IsTerminal() {
		return nil, &PreconditionError{Message: "Cannot request an extension on a closed order"}
	}

	var ticket models.SupportTicket
	err := db.Transaction(func(tx *gorm.DB) error {
		ticket = models.SupportTicket{
			OrderID:   orderID,
			UserID:    adminID,
			Subject:   "Deadline Extension Request",
			Message:   reason,
			Direction: models.TicketAdminInitiated,
			Status:    models.TicketStatusOpen,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		return tx.Model(&order).Update("extension_requested", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// SweepOverdueOrders forces any order past its due date into overdue, unless
// it is already settled. It is a pure function over "now" so it can run both
// from request paths and from a periodic runner.
func SweepOverdueOrders(db *gorm.DB, now time.Time) ([]uint, error) {
	settled := []string{
		models.OrderStatusCompleted,
		models.OrderStatusPendingReview,
		models.OrderStatusCancelled,
		models.OrderStatusOverdue,
	}

	var overdue []models.Order
	err := db.Where("due_date < ? AND status NOT IN ?", now, settled).Find(&overdue).Error
	if err != nil {
		return nil, err
	}
	if len(overdue) == 0 {
		return []uint{}, nil
	}

	ids := make([]uint, 0, len(overdue))
	for _, order := range overdue {
		ids = append(ids, order.ID)
	}

	err = db.Model(&models.Order{}).Where("id IN ?", ids).
		Update("status", models.OrderStatusOverdue).Error
	if err != nil {
		return nil, err
	}

	log.Printf("Marked %d orders as overdue. IDs: %v", len(ids), ids)
	return ids, nil
}

// SweepAutoCompleteOrders promotes orders stuck in "completed pending
// review" for more than 3 days to completed
func SweepAutoCompleteOrders(db *gorm.DB, now time.Time) ([]uint, error) {
	cutoff := now.Add(-3 * 24 * time.Hour)

	var stale []models.Order
	err := db.Where("status = ? AND updated_at < ?", models.OrderStatusPendingReview, cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return []uint{}, nil
	}

	ids := make([]uint, 0, len(stale))
	for _, order := range stale {
		ids = append(ids, order.ID)
	}

	err = db.Model(&models.Order{}).Where("id IN ?", ids).
		Update("status", models.OrderStatusCompleted).Error
	if err != nil {
		return nil, err
	}

	log.Printf("Auto-completed %d orders stuck in review. IDs: %v", len(ids), ids)
	return ids, nil
}

// RunSweeps runs both opportunistic sweeps. Invoked on client dashboard and
// order-list views; state may be stale between visits, so callers needing
// fresh state must call this before reading.
func RunSweeps(db *gorm.DB, now time.Time) {
	if _, err := SweepOverdueOrders(db, now); err != nil {
		log.Printf("Error sweeping overdue orders: %v", err)
	}
	if _, err := SweepAutoCompleteOrders(db, now); err != nil {
		log.Printf("Error auto-completing orders: %v", err)
	}
}
