package services

import (
	"fmt"
	"log"

	"github.com/stansam/Tuned/models"
	"gorm.io/gorm"
)

// Room names for the realtime hub. Renaming any of these is a breaking
// change to the wire contract.
const AdminRoom = "admin_room"

// UserRoom returns the personal room name for a user
func UserRoom(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// ChatRoom returns the room name for a chat
func ChatRoom(chatID uint) string {
	return fmt.Sprintf("chat_%d", chatID)
}

// Broadcaster pushes events to realtime rooms. The hub implements it; a
// nil broadcaster (e.g. in tests without a hub) silently drops events.
type Broadcaster interface {
	EmitToRoom(room, event string, data interface{})
}

var broadcasterInstance Broadcaster

// SetBroadcaster wires the realtime hub into the notification layer
func SetBroadcaster(b Broadcaster) {
	broadcasterInstance = b
}

// GetBroadcaster returns the wired broadcaster, possibly nil
func GetBroadcaster() Broadcaster {
	return broadcasterInstance
}

func emitToRoom(room, event string, data interface{}) {
	if broadcasterInstance != nil {
		broadcasterInstance.EmitToRoom(room, event, data)
	}
}

// UnreadCounts holds a user's unread tallies, always recomputed from the
// database rather than incrementally maintained
type UnreadCounts struct {
	Messages      int64 `json:"messages"`
	Notifications int64 `json:"notifications"`
	Total         int64 `json:"total"`
}

// ComputeUnreadCounts returns fresh unread counts for a user
func ComputeUnreadCounts(db *gorm.DB, userID uint) (*UnreadCounts, error) {
	var messages int64
	err := db.Model(&models.ChatMessage{}).
		Joins("JOIN chats ON chats.id = chat_messages.chat_id").
		Where("(chats.user_id = ? OR chats.admin_id = ?)", userID, userID).
		Where("chat_messages.user_id != ?", userID).
		Where("chat_messages.is_read = ?", false).
		Count(&messages).Error
	if err != nil {
		return nil, err
	}

	var notifications int64
	err = db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&notifications).Error
	if err != nil {
		return nil, err
	}

	return &UnreadCounts{
		Messages:      messages,
		Notifications: notifications,
		Total:         messages + notifications,
	}, nil
}

// SendUnreadCounts recomputes and pushes unread counts to the user's
// personal room
func SendUnreadCounts(db *gorm.DB, userID uint) {
	counts, err := ComputeUnreadCounts(db, userID)
	if err != nil {
		log.Printf("Error computing unread counts for user %d: %v", userID, err)
		return
	}
	emitToRoom(UserRoom(userID), "unread_counts", counts)
}

// SendSystemNotification persists a notification and pushes it to the
// user's personal room. The notification write is committed before the
// broadcast so a dropped connection never loses persisted state.
func SendSystemNotification(db *gorm.DB, userID uint, title, message, notificationType, link, priority string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
		Link:    link,
	}
	if err := db.Create(&notification).Error; err != nil {
		return nil, err
	}

	soundType := "notification"
	switch notificationType {
	case "error", "warning":
		soundType = "alert"
	case "success":
		soundType = "success"
	}

	emitToRoom(UserRoom(userID), "new_notification", map[string]interface{}{
		"notification": notification,
		"sound_type":   soundType,
		"priority":     priority,
	})
	SendUnreadCounts(db, userID)

	return &notification, nil
}

// BroadcastToAdmins pushes an event to all connected admin sessions
func BroadcastToAdmins(event string, data interface{}) {
	emitToRoom(AdminRoom, event, data)
}

// notifyAdmins persists one notification per admin user and pushes each
func notifyAdmins(db *gorm.DB, title, message, notificationType, link, priority string) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		log.Printf("Error loading admin users for notification: %v", err)
		return
	}
	for _, admin := range admins {
		if _, err := SendSystemNotification(db, admin.ID, title, message, notificationType, link, priority); err != nil {
			log.Printf("Error notifying admin %d: %v", admin.ID, err)
		}
	}
}
