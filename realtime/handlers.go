package realtime

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
)

// dispatch routes one inbound event to its handler. Handlers run on the
// session's read goroutine, so events from the same session never
// interleave.
func (c *Client) dispatch(event Event) {
	switch event.Event {
	case "join_chat":
		c.handleJoinChat(event.Data)
	case "leave_chat":
		c.handleLeaveChat(event.Data)
	case "send_message":
		c.handleSendMessage(event.Data)
	case "mark_messages_read":
		c.handleMarkMessagesRead(event.Data)
	case "mark_notification_read":
		c.handleMarkNotificationRead(event.Data)
	case "get_notifications":
		c.handleGetNotifications(event.Data)
	case "get_all_notifications":
		c.handleGetAllNotifications(event.Data)
	default:
		c.emitError("Unknown event")
	}
}

type chatRef struct {
	ChatID uint `json:"chat_id"`
}

func (c *Client) handleJoinChat(data json.RawMessage) {
	var req chatRef
	if err := json.Unmarshal(data, &req); err != nil || req.ChatID == 0 {
		c.emitError("chat_id is required")
		return
	}

	db := config.GetDB()
	if _, err := services.GetChat(db, req.ChatID, c.userID); err != nil {
		c.emitError(err.Error())
		return
	}

	room := services.ChatRoom(req.ChatID)
	c.hub.joinRoom(c, room)

	// Joining marks the other side's messages read for everyone watching.
	// The confirmation goes out even when nothing was unread, so repeated
	// joins still deliver a read receipt.
	ids, err := services.MarkChatMessagesRead(db, req.ChatID, c.userID)
	if err != nil {
		log.Printf("Error marking chat %d read: %v", req.ChatID, err)
	} else {
		c.hub.EmitToRoom(room, "messages_marked_read", map[string]interface{}{
			"chat_id":     req.ChatID,
			"message_ids": ids,
			"reader_id":   c.userID,
		})
	}

	c.emit("joined_chat", map[string]interface{}{"chat_id": req.ChatID})
	services.SendUnreadCounts(db, c.userID)
}

func (c *Client) handleLeaveChat(data json.RawMessage) {
	var req chatRef
	if err := json.Unmarshal(data, &req); err != nil || req.ChatID == 0 {
		c.emitError("chat_id is required")
		return
	}

	c.hub.leaveRoom(c, services.ChatRoom(req.ChatID))
	c.emit("left_chat", map[string]interface{}{"chat_id": req.ChatID})
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var req struct {
		ChatID  uint   `json:"chat_id"`
		Content string `json:"content"`
		TempID  string `json:"temp_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.ChatID == 0 {
		c.emitError("chat_id is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.emitError("Message content cannot be empty")
		return
	}

	db := config.GetDB()
	chat, err := services.GetChat(db, req.ChatID, c.userID)
	if err != nil {
		c.emitError(err.Error())
		return
	}

	message, err := services.CreateChatMessage(db, req.ChatID, c.userID, strings.TrimSpace(req.Content))
	if err != nil {
		c.emitError("Failed to send message")
		return
	}

	var sender models.User
	senderName := ""
	if err := db.First(&sender, c.userID).Error; err == nil {
		senderName = sender.GetName()
	}

	// temp_id is echoed back so the sender can reconcile its optimistic copy
	c.hub.EmitToRoom(services.ChatRoom(req.ChatID), "new_message", map[string]interface{}{
		"id":          message.ID,
		"chat_id":     message.ChatID,
		"sender_id":   message.UserID,
		"sender_name": senderName,
		"content":     message.Content,
		"is_read":     message.IsRead,
		"created_at":  message.CreatedAt.Format(time.RFC3339),
		"temp_id":     req.TempID,
	})

	services.SendUnreadCounts(db, chat.OtherParticipant(c.userID))
}

func (c *Client) handleMarkMessagesRead(data json.RawMessage) {
	var req chatRef
	if err := json.Unmarshal(data, &req); err != nil || req.ChatID == 0 {
		c.emitError("chat_id is required")
		return
	}

	db := config.GetDB()
	if _, err := services.GetChat(db, req.ChatID, c.userID); err != nil {
		c.emitError(err.Error())
		return
	}

	ids, err := services.MarkChatMessagesRead(db, req.ChatID, c.userID)
	if err != nil {
		c.emitError("Failed to mark messages read")
		return
	}
	// Always confirmed, even when nothing was unread
	c.hub.EmitToRoom(services.ChatRoom(req.ChatID), "messages_marked_read", map[string]interface{}{
		"chat_id":     req.ChatID,
		"message_ids": ids,
		"reader_id":   c.userID,
	})
	services.SendUnreadCounts(db, c.userID)
}

func (c *Client) handleMarkNotificationRead(data json.RawMessage) {
	var req struct {
		NotificationID uint `json:"notification_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.NotificationID == 0 {
		c.emitError("notification_id is required")
		return
	}

	db := config.GetDB()
	var notification models.Notification
	err := db.Where("id = ? AND user_id = ?", req.NotificationID, c.userID).
		First(&notification).Error
	if err != nil {
		c.emitError("Notification not found")
		return
	}

	// Idempotent: re-marking a read notification still confirms
	if !notification.IsRead {
		if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
			c.emitError("Failed to mark notification read")
			return
		}
	}

	c.emit("notification_marked_read", map[string]interface{}{
		"notification_id": req.NotificationID,
	})
	services.SendUnreadCounts(db, c.userID)
}

func (c *Client) handleGetNotifications(data json.RawMessage) {
	req := struct {
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	}{Limit: 20}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			c.emitError("Invalid pagination")
			return
		}
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	db := config.GetDB()
	var total int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", c.userID).Count(&total).Error; err != nil {
		c.emitError("Failed to load notifications")
		return
	}

	var notifications []models.Notification
	err := db.Where("user_id = ?", c.userID).
		Order("created_at desc").
		Offset(req.Offset).Limit(req.Limit).
		Find(&notifications).Error
	if err != nil {
		c.emitError("Failed to load notifications")
		return
	}

	c.emit("notifications_loaded", map[string]interface{}{
		"notifications": notifications,
		"total_count":   total,
		"offset":        req.Offset,
		"limit":         req.Limit,
	})
}

func (c *Client) handleGetAllNotifications(data json.RawMessage) {
	req := struct {
		Type   string `json:"type"`
		Status string `json:"status"`
		Search string `json:"search"`
		Offset int    `json:"offset"`
		Limit  int    `json:"limit"`
	}{Limit: 20}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			c.emitError("Invalid filter")
			return
		}
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	db := config.GetDB()
	q := db.Model(&models.Notification{}).Where("user_id = ?", c.userID)

	// Filters are ANDed together
	if req.Type != "" {
		q = q.Where("type = ?", req.Type)
	}
	switch req.Status {
	case "read":
		q = q.Where("is_read = ?", true)
	case "unread":
		q = q.Where("is_read = ?", false)
	}
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		q = q.Where("title LIKE ? OR message LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.emitError("Failed to load notifications")
		return
	}

	var notifications []models.Notification
	err := q.Order("created_at desc").
		Offset(req.Offset).Limit(req.Limit).
		Find(&notifications).Error
	if err != nil {
		c.emitError("Failed to load notifications")
		return
	}

	c.emit("all_notifications_loaded", map[string]interface{}{
		"notifications": notifications,
		"total_count":   total,
		"offset":        req.Offset,
		"limit":         req.Limit,
		"has_more":      int64(req.Offset+len(notifications)) < total,
	})
}
