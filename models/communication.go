package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat statuses
const (
	ChatStatusActive = "active"
	ChatStatusClosed = "closed"
)

// Chat pairs one client and one admin, optionally scoped to an order
type Chat struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	AdminID   uint           `gorm:"not null;index" json:"admin_id"`
	Admin     User           `gorm:"foreignKey:AdminID" json:"-"`
	OrderID   *uint          `gorm:"index" json:"order_id,omitempty"`
	Order     *Order         `gorm:"foreignKey:OrderID" json:"-"`
	Subject   string         `gorm:"not null" json:"subject"`
	Status    string         `gorm:"not null;default:'active'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Chat model
func (Chat) TableName() string {
	return "chats"
}

// Participant reports whether the given user is on either side of the chat
func (c *Chat) Participant(userID uint) bool {
	return c.UserID == userID || c.AdminID == userID
}

// OtherParticipant returns the counterpart of the given user in the chat
func (c *Chat) OtherParticipant(userID uint) uint {
	if c.UserID == userID {
		return c.AdminID
	}
	return c.UserID
}

// ChatMessage belongs to a Chat and a sender User. IsRead is flipped in bulk
// when the other participant views the chat.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ChatID    uint           `gorm:"not null;index" json:"chat_id"`
	Chat      Chat           `gorm:"foreignKey:ChatID" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// Notification is one entry in a user's append-only notification log.
// Only the read flag is ever updated; rows are never deleted.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Type      string         `gorm:"not null;default:'info'" json:"type"`
	Title     string         `gorm:"not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	Link      string         `json:"link"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
