package services

import (
	"fmt"
	"log"

	"github.com/stansam/Tuned/models"
	"gorm.io/gorm"
)

// Lifecycle notification triggers. Each one fans out to the relevant party's
// personal room and, where applicable, sends the transactional email.
// Failures here are logged and swallowed: a notification failure must never
// roll back the state change it is attached to.

func sendEmails(messages ...*EmailMessage) {
	if svc := GetEmailService(); svc != nil {
		svc.SendMessages(messages...)
	}
}

// HandleNewOrderCreation notifies the client and all admins about a new order
func HandleNewOrderCreation(db *gorm.DB, orderID uint) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for creation notifications: %v", orderID, err)
		return
	}

	if _, err := SendSystemNotification(db, order.ClientID,
		fmt.Sprintf("Order #%s Received", order.OrderNumber),
		"Your order has been received. Complete payment to start processing.",
		"info", fmt.Sprintf("/client/orders/%d", order.ID), "normal"); err != nil {
		log.Printf("Error notifying client for order %d: %v", order.ID, err)
	}

	notifyAdmins(db,
		"New Order Received",
		fmt.Sprintf("New assignment order #%s from %s", order.OrderNumber, order.Client.Username),
		"info", fmt.Sprintf("/admin/orders/%d", order.ID), "high")

	BroadcastToAdmins("new_order_alert", map[string]interface{}{
		"order_id":   order.ID,
		"user":       order.Client.Username,
		"created_at": order.CreatedAt,
	})

	sendEmails(orderCreatedEmail(order.Client.GetName(), order.Client.Email, order.OrderNumber, order.TotalPrice))
}

// HandlePaymentCompletion notifies both parties that a payment went through
func HandlePaymentCompletion(db *gorm.DB, orderID uint) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for payment notifications: %v", orderID, err)
		return
	}

	if _, err := SendSystemNotification(db, order.ClientID,
		"Payment Confirmed",
		fmt.Sprintf("Payment for order #%s has been confirmed. Work will begin shortly.", order.OrderNumber),
		"success", fmt.Sprintf("/client/orders/%d", order.ID), "high"); err != nil {
		log.Printf("Error notifying client for payment on order %d: %v", order.ID, err)
	}

	notifyAdmins(db,
		"Payment Completed",
		fmt.Sprintf("Client %s has completed payment for order #%s.", order.Client.Username, order.OrderNumber),
		"success", fmt.Sprintf("/admin/orders/%d", order.ID), "high")

	BroadcastToAdmins("payment_completed", map[string]interface{}{
		"order_id":        order.ID,
		"client_username": order.Client.Username,
		"amount":          order.TotalPrice,
	})

	sendEmails(paymentCompletedEmail(order.Client.GetName(), order.Client.Email, order.OrderNumber, order.TotalPrice))
}

// HandleOrderDelivery notifies the client that the order was delivered and
// awaits review. Revised deliveries take the revised-notification path.
func HandleOrderDelivery(db *gorm.DB, orderID uint, revised bool) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for delivery notifications: %v", orderID, err)
		return
	}

	title := fmt.Sprintf("Order #%s Delivered", order.OrderNumber)
	message := "Your completed assignment has been delivered and is awaiting your review."
	if revised {
		title = fmt.Sprintf("Revised Order #%s Delivered", order.OrderNumber)
		message = "Your revised assignment has been delivered. Please review the changes."
	}

	if _, err := SendSystemNotification(db, order.ClientID, title, message,
		"success", fmt.Sprintf("/client/orders/%d", order.ID), "high"); err != nil {
		log.Printf("Error notifying client for delivery of order %d: %v", order.ID, err)
	}

	sendEmails(orderDeliveredEmail(order.Client.GetName(), order.Client.Email, order.OrderNumber))
}

// HandleRevisionRequest notifies admins that a client requested a revision
func HandleRevisionRequest(db *gorm.DB, orderID uint, reason string) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for revision notifications: %v", orderID, err)
		return
	}

	notifyAdmins(db,
		fmt.Sprintf("Revision Requested on Order #%s", order.OrderNumber),
		fmt.Sprintf("Client %s requested a revision: %s", order.Client.Username, reason),
		"warning", fmt.Sprintf("/admin/orders/%d", order.ID), "high")

	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err == nil {
		for _, admin := range admins {
			sendEmails(revisionRequestedEmail(admin.GetName(), admin.Email, order.OrderNumber, reason))
		}
	}
}

// HandleOrderStatusChange notifies the client about a status change
func HandleOrderStatusChange(db *gorm.DB, orderID uint, status string) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for status notifications: %v", orderID, err)
		return
	}

	statusMessages := map[string]string{
		models.OrderStatusActive:        "Work has started on your assignment.",
		models.OrderStatusCompleted:     "Your assignment has been completed! Please check your dashboard.",
		models.OrderStatusPendingReview: "Your completed assignment has been delivered.",
		models.OrderStatusRevision:      "Your revision request has been received and is being processed.",
		models.OrderStatusCancelled:     "Your assignment has been cancelled.",
	}
	message, ok := statusMessages[status]
	if !ok {
		message = fmt.Sprintf("Assignment status updated to: %s", status)
	}

	notificationType := "info"
	priority := "normal"
	if status == models.OrderStatusCompleted {
		notificationType = "success"
		priority = "high"
	} else if status == models.OrderStatusCancelled {
		priority = "high"
	}

	if _, err := SendSystemNotification(db, order.ClientID,
		fmt.Sprintf("Order #%s - %s", order.OrderNumber, status), message,
		notificationType, fmt.Sprintf("/client/orders/%d", order.ID), priority); err != nil {
		log.Printf("Error notifying client for status change on order %d: %v", order.ID, err)
	}
}

// HandleOrderCompletionByClient notifies admins that the client accepted
// the delivery and marked the order complete
func HandleOrderCompletionByClient(db *gorm.DB, orderID uint) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for completion notifications: %v", orderID, err)
		return
	}

	notifyAdmins(db,
		fmt.Sprintf("Order #%s Accepted", order.OrderNumber),
		fmt.Sprintf("Client %s has accepted the delivery and marked the order complete.", order.Client.Username),
		"success", fmt.Sprintf("/admin/orders/%d", order.ID), "normal")
}

// HandleDeadlineExtensionRequest notifies the client that staff requested
// a deadline extension
func HandleDeadlineExtensionRequest(db *gorm.DB, orderID uint, reason string) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for extension notifications: %v", orderID, err)
		return
	}

	if _, err := SendSystemNotification(db, order.ClientID,
		fmt.Sprintf("Deadline Extension Requested for Order #%s", order.OrderNumber),
		fmt.Sprintf("Our team has requested a deadline extension: %s", reason),
		"warning", fmt.Sprintf("/client/orders/%d", order.ID), "high"); err != nil {
		log.Printf("Error notifying client for extension on order %d: %v", order.ID, err)
	}

	sendEmails(extensionRequestedEmail(order.Client.GetName(), order.Client.Email, order.OrderNumber, reason))
}

// HandleOrderFilesUpload notifies admins that the client attached more
// instruction files to an existing order
func HandleOrderFilesUpload(db *gorm.DB, orderID uint, count int) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for upload notifications: %v", orderID, err)
		return
	}

	notifyAdmins(db,
		fmt.Sprintf("Files Added to Order #%s", order.OrderNumber),
		fmt.Sprintf("Client %s uploaded %d new file(s) to order #%s.", order.Client.Username, count, order.OrderNumber),
		"info", fmt.Sprintf("/admin/orders/%d", order.ID), "normal")
}

// HandleClientDeadlineChange notifies admins that the client moved the due
// date on an unpaid order
func HandleClientDeadlineChange(db *gorm.DB, orderID uint) {
	var order models.Order
	if err := db.Preload("Client").First(&order, orderID).Error; err != nil {
		log.Printf("Error loading order %d for deadline notifications: %v", orderID, err)
		return
	}

	notifyAdmins(db,
		fmt.Sprintf("Deadline Changed on Order #%s", order.OrderNumber),
		fmt.Sprintf("Client %s moved the due date to %s.", order.Client.Username, order.DueDate.Format("Jan 2, 2006 15:04")),
		"info", fmt.Sprintf("/admin/orders/%d", order.ID), "normal")
}

// HandleUserRegistration welcomes the new user and alerts admins
func HandleUserRegistration(db *gorm.DB, userID uint) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		log.Printf("Error loading user %d for registration notifications: %v", userID, err)
		return
	}

	if _, err := SendSystemNotification(db, user.ID,
		"Welcome to Tuned Essays",
		"Your account is ready. Place your first order to get started.",
		"success", "/client/orders/new", "normal"); err != nil {
		log.Printf("Error sending welcome notification to user %d: %v", user.ID, err)
	}

	notifyAdmins(db,
		"New User Registration",
		fmt.Sprintf("New user %s (%s) has registered on the platform.", user.Username, user.Email),
		"info", fmt.Sprintf("/admin/users/%d", user.ID), "normal")

	BroadcastToAdmins("new_user_registration", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})

	sendEmails(welcomeEmail(user.GetName(), user.Email))
}
