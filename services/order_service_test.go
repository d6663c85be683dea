package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stansam/Tuned/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB, clientID uint, status string) *models.Order {
	t.Helper()

	service, level, deadlines := seedRates(t, db, 10.00, 24)
	order := models.Order{
		OrderNumber:     GenerateOrderNumber(time.Now()),
		ClientID:        clientID,
		ServiceID:       service.ID,
		AcademicLevelID: level.ID,
		DeadlineID:      deadlines[0].ID,
		Title:           "Test order",
		WordCount:       275,
		PageCount:       1,
		Status:          status,
		TotalPrice:      10.00,
		DueDate:         time.Now().Add(24 * time.Hour),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return &order
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	number := GenerateOrderNumber(now)
	assert.True(t, strings.HasPrefix(number, "ORD-20260315-"))
	assert.Len(t, number, len("ORD-20260315-")+6)
	assert.Equal(t, strings.ToUpper(number), number)

	// Suffixes are random, collisions across calls should not happen
	assert.NotEqual(t, number, GenerateOrderNumber(now))
}

func TestCreateOrder(t *testing.T) {
	db := setupServiceTestDB(t)
	client := seedUser(t, db, "client", false)
	service, level, deadlines := seedRates(t, db, 10.00, 24, 48)

	t.Run("Price is resolved server side", func(t *testing.T) {
		order, err := CreateOrder(db, CreateOrderInput{
			ClientID:           client.ID,
			ServiceID:          service.ID,
			AcademicLevelID:    level.ID,
			HoursUntilDeadline: 24,
			Title:              "Essay on testing",
			WordCount:          550,
		})
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, 20.00, order.TotalPrice)
		assert.Equal(t, deadlines[0].ID, order.DeadlineID)
		assert.False(t, order.Paid)
		assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	})

	t.Run("Missing title rejected", func(t *testing.T) {
		_, err := CreateOrder(db, CreateOrderInput{
			ClientID:           client.ID,
			ServiceID:          service.ID,
			AcademicLevelID:    level.ID,
			HoursUntilDeadline: 24,
			WordCount:          550,
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestMarkOrderComplete(t *testing.T) {
	db := setupServiceTestDB(t)
	client := seedUser(t, db, "client", false)

	t.Run("Fails before any delivery and mutates nothing", func(t *testing.T) {
		order := seedOrder(t, db, client.ID, models.OrderStatusActive)

		_, err := MarkOrderComplete(db, order.ID, client.ID)
		var preconditionErr *PreconditionError
		assert.ErrorAs(t, err, &preconditionErr)

		var reloaded models.Order
		assert.NoError(t, db.First(&reloaded, order.ID).Error)
		assert.Equal(t, models.OrderStatusActive, reloaded.Status)
		assert.Nil(t, reloaded.CompletionDate)
	})

	t.Run("Succeeds once delivered", func(t *testing.T) {
		db := setupServiceTestDB(t)
		client := seedUser(t, db, "client2", false)
		order := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)
		assert.NoError(t, db.Create(&models.OrderDelivery{
			OrderID:        order.ID,
			DeliveryStatus: "delivered",
			DeliveredAt:    time.Now(),
		}).Error)

		completed, err := MarkOrderComplete(db, order.ID, client.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, completed.Status)
		assert.NotNil(t, completed.CompletionDate)
	})

	t.Run("Another client cannot complete the order", func(t *testing.T) {
		db := setupServiceTestDB(t)
		client := seedUser(t, db, "owner", false)
		stranger := seedUser(t, db, "stranger", false)
		order := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)

		_, err := MarkOrderComplete(db, order.ID, stranger.ID)
		var notFoundErr *NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestRequestRevision(t *testing.T) {
	db := setupServiceTestDB(t)
	client := seedUser(t, db, "client", false)
	order := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)

	updated, err := RequestRevision(db, order.ID, client.ID, "Please fix the references")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusRevision, updated.Status)

	// The comment, the ticket, and the status change land together
	var comment models.OrderComment
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&comment).Error)
	assert.Equal(t, "REVISION REQUEST: Please fix the references", comment.Message)

	var ticket models.SupportTicket
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&ticket).Error)
	assert.Equal(t, models.TicketClientInitiated, ticket.Direction)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)

	t.Run("Empty reason rejected with no side effects", func(t *testing.T) {
		db := setupServiceTestDB(t)
		client := seedUser(t, db, "client2", false)
		order := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)

		_, err := RequestRevision(db, order.ID, client.ID, "")
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)

		var count int64
		db.Model(&models.SupportTicket{}).Where("order_id = ?", order.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Failed ticket insert rolls back comment and status", func(t *testing.T) {
		db := setupServiceTestDB(t)
		client := seedUser(t, db, "client3", false)
		order := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)

		// Force the second insert inside the transaction to fail
		assert.NoError(t, db.Migrator().DropTable(&models.SupportTicket{}))

		_, err := RequestRevision(db, order.ID, client.ID, "Tighten the intro")
		assert.Error(t, err)

		var comments int64
		db.Model(&models.OrderComment{}).Where("order_id = ?", order.ID).Count(&comments)
		assert.Zero(t, comments)

		var reloaded models.Order
		assert.NoError(t, db.First(&reloaded, order.ID).Error)
		assert.Equal(t, models.OrderStatusPendingReview, reloaded.Status)
	})
}

func TestDeliverOrder(t *testing.T) {
	tests := []struct {
		name            string
		initialStatus   string
		expectedStatus  string
		expectedRevised bool
	}{
		{
			name:            "Active order moves to pending review",
			initialStatus:   models.OrderStatusActive,
			expectedStatus:  models.OrderStatusPendingReview,
			expectedRevised: false,
		},
		{
			name:            "Revision order moves back to pending review as revised",
			initialStatus:   models.OrderStatusRevision,
			expectedStatus:  models.OrderStatusPendingReview,
			expectedRevised: true,
		},
		{
			name:            "Completed order keeps its status",
			initialStatus:   models.OrderStatusCompleted,
			expectedStatus:  models.OrderStatusCompleted,
			expectedRevised: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupServiceTestDB(t)
			client := seedUser(t, db, "client", false)
			order := seedOrder(t, db, client.ID, tt.initialStatus)

			delivery, revised, err := DeliverOrder(db, order.ID)
			assert.NoError(t, err)
			assert.NotNil(t, delivery)
			assert.Equal(t, tt.expectedRevised, revised)

			var reloaded models.Order
			assert.NoError(t, db.First(&reloaded, order.ID).Error)
			assert.Equal(t, tt.expectedStatus, reloaded.Status)
		})
	}

	t.Run("Second delivery reuses the bundle", func(t *testing.T) {
		db := setupServiceTestDB(t)
		client := seedUser(t, db, "client", false)
		order := seedOrder(t, db, client.ID, models.OrderStatusActive)

		first, _, err := DeliverOrder(db, order.ID)
		assert.NoError(t, err)
		second, _, err := DeliverOrder(db, order.ID)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestRequestDeadlineExtension(t *testing.T) {
	db := setupServiceTestDB(t)
	client := seedUser(t, db, "client", false)
	admin := seedUser(t, db, "admin", true)
	order := seedOrder(t, db, client.ID, models.OrderStatusActive)

	ticket, err := RequestDeadlineExtension(db, order.ID, admin.ID, "Sources arrived late")
	assert.NoError(t, err)
	assert.Equal(t, models.TicketAdminInitiated, ticket.Direction)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.True(t, reloaded.ExtensionRequested)

	t.Run("Closed order rejected", func(t *testing.T) {
		closed := seedOrder(t, db, client.ID, models.OrderStatusCancelled)
		_, err := RequestDeadlineExtension(db, closed.ID, admin.ID, "reason")
		var preconditionErr *PreconditionError
		assert.ErrorAs(t, err, &preconditionErr)
	})
}

func TestSweepOverdueOrders(t *testing.T) {
	db := setupServiceTestDB(t)
	client := seedUser(t, db, "client", false)
	now := time.Now()

	pastDue := seedOrder(t, db, client.ID, models.OrderStatusActive)
	db.Model(pastDue).UpdateColumn("due_date", now.Add(-2*time.Hour))

	settled := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)
	db.Model(settled).UpdateColumn("due_date", now.Add(-2*time.Hour))

	completed := seedOrder(t, db, client.ID, models.OrderStatusCompleted)
	db.Model(completed).UpdateColumn("due_date", now.Add(-2*time.Hour))

	onTime := seedOrder(t, db, client.ID, models.OrderStatusActive)

	ids, err := SweepOverdueOrders(db, now)
	assert.NoError(t, err)
	assert.Equal(t, []uint{pastDue.ID}, ids)

	var reloadedPastDue models.Order
	db.First(&reloadedPastDue, pastDue.ID)
	assert.Equal(t, models.OrderStatusOverdue, reloadedPastDue.Status)

	// Orders past review, completed, or still on time are untouched
	var reloadedSettled models.Order
	db.First(&reloadedSettled, settled.ID)
	assert.Equal(t, models.OrderStatusPendingReview, reloadedSettled.Status)
	var reloadedCompleted models.Order
	db.First(&reloadedCompleted, completed.ID)
	assert.Equal(t, models.OrderStatusCompleted, reloadedCompleted.Status)
	var reloadedOnTime models.Order
	db.First(&reloadedOnTime, onTime.ID)
	assert.Equal(t, models.OrderStatusActive, reloadedOnTime.Status)

	t.Run("Second sweep is a no-op", func(t *testing.T) {
		ids, err := SweepOverdueOrders(db, now)
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestSweepAutoCompleteOrders(t *testing.T) {
	db := setupServiceTestDB(t)
	client := seedUser(t, db, "client", false)
	now := time.Now()

	stale := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)
	db.Model(stale).UpdateColumn("updated_at", now.Add(-4*24*time.Hour))

	fresh := seedOrder(t, db, client.ID, models.OrderStatusPendingReview)
	db.Model(fresh).UpdateColumn("updated_at", now.Add(-1*24*time.Hour))

	ids, err := SweepAutoCompleteOrders(db, now)
	assert.NoError(t, err)
	assert.Equal(t, []uint{stale.ID}, ids)

	var reloadedStale models.Order
	db.First(&reloadedStale, stale.ID)
	assert.Equal(t, models.OrderStatusCompleted, reloadedStale.Status)
	var reloadedFresh models.Order
	db.First(&reloadedFresh, fresh.ID)
	assert.Equal(t, models.OrderStatusPendingReview, reloadedFresh.Status)
}
