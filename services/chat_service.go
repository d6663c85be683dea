package services

import (
	"github.com/stansam/Tuned/models"
	"gorm.io/gorm"
)

// CreateChat opens a new chat between a client and an admin, optionally
// scoped to an order
func CreateChat(db *gorm.DB, userID, adminID uint, subject string, orderID *uint) (*models.Chat, error) {
	chat := models.Chat{
		UserID:  userID,
		AdminID: adminID,
		Subject: subject,
		OrderID: orderID,
		Status:  models.ChatStatusActive,
	}
	if err := db.Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChat loads a chat only if the given user is a participant
func GetChat(db *gorm.DB, chatID, userID uint) (*models.Chat, error) {
	var chat models.Chat
	if err := db.First(&chat, chatID).Error; err != nil {
		return nil, &NotFoundError{Message: "Chat not found"}
	}
	if !chat.Participant(userID) {
		return nil, &PreconditionError{Message: "Access denied to this chat"}
	}
	return &chat, nil
}

// GetUserChats returns all chats a user is part of, on whichever side
func GetUserChats(db *gorm.DB, userID uint, isAdmin bool) ([]models.Chat, error) {
	var chats []models.Chat
	q := db.Order("updated_at desc")
	if isAdmin {
		q = q.Where("admin_id = ?", userID)
	} else {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// GetChatMessages returns a chat's messages oldest first, if the user has access
func GetChatMessages(db *gorm.DB, chatID, userID uint) ([]models.ChatMessage, error) {
	if _, err := GetChat(db, chatID, userID); err != nil {
		return nil, err
	}
	var messages []models.ChatMessage
	err := db.Where("chat_id = ?", chatID).Order("created_at asc").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateChatMessage persists a message after verifying chat membership
func CreateChatMessage(db *gorm.DB, chatID, senderID uint, content string) (*models.ChatMessage, error) {
	if _, err := GetChat(db, chatID, senderID); err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		ChatID:  chatID,
		UserID:  senderID,
		Content: content,
		IsRead:  false,
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkChatMessagesRead marks all unread messages from the other participant
// as read and returns their IDs. Idempotent: a second call returns an empty
// list and changes nothing.
func MarkChatMessagesRead(db *gorm.DB, chatID, userID uint) ([]uint, error) {
	var unread []models.ChatMessage
	err := db.Where("chat_id = ? AND user_id != ? AND is_read = ?", chatID, userID, false).
		Find(&unread).Error
	if err != nil {
		return nil, err
	}
	if len(unread) == 0 {
		return []uint{}, nil
	}

	ids := make([]uint, 0, len(unread))
	for _, msg := range unread {
		ids = append(ids, msg.ID)
	}

	err = db.Model(&models.ChatMessage{}).Where("id IN ?", ids).
		Update("is_read", true).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CloseChat marks a chat closed
func CloseChat(db *gorm.DB, chatID, userID uint) (*models.Chat, error) {
	chat, err := GetChat(db, chatID, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(chat).Update("status", models.ChatStatusClosed).Error; err != nil {
		return nil, err
	}
	return chat, nil
}
