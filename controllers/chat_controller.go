package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
)

// CreateChatRequest represents the request body for opening a chat
type CreateChatRequest struct {
	Subject string `json:"subject" binding:"required"`
	OrderID *uint  `json:"order_id"`
	UserID  uint   `json:"user_id"`
}

// CreateChat handles POST /api/v1/chats. Clients are paired with an
// available admin; admins name the client they are contacting.
func CreateChat(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()

	var userID, adminID uint
	if middleware.IsAdmin(c) {
		if req.UserID == 0 {
			respondValidationError(c, "user_id is required")
			return
		}
		userID = req.UserID
		adminID = callerID
	} else {
		var admin models.User
		if err := db.Where("is_admin = ?", true).Order("id asc").First(&admin).Error; err != nil {
			respondError(c, http.StatusServiceUnavailable, "NO_ADMIN_AVAILABLE",
				"No support staff available")
			return
		}
		userID = callerID
		adminID = admin.ID
	}

	chat, err := services.CreateChat(db, userID, adminID, req.Subject, req.OrderID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create chat")
		return
	}

	respondData(c, http.StatusCreated, chat)
}

// ListChats handles GET /api/v1/chats
func ListChats(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}

	chats, err := services.GetUserChats(config.GetDB(), callerID, middleware.IsAdmin(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load chats")
		return
	}

	respondData(c, http.StatusOK, chats)
}

// GetChat handles GET /api/v1/chats/:id - the chat with its full message
// history. Viewing marks the other side's messages read.
func GetChat(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}
	chatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	chat, err := services.GetChat(db, chatID, callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	messages, err := services.GetChatMessages(db, chatID, callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, err := services.MarkChatMessagesRead(db, chatID, callerID); err == nil {
		services.SendUnreadCounts(db, callerID)
	}

	respondData(c, http.StatusOK, gin.H{
		"chat":     chat,
		"messages": messages,
	})
}

// SendChatMessage handles POST /api/v1/chats/:id/messages - the HTTP
// fallback for clients without a live socket
func SendChatMessage(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}
	chatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	chat, err := services.GetChat(db, chatID, callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message, err := services.CreateChatMessage(db, chatID, callerID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if b := services.GetBroadcaster(); b != nil {
		b.EmitToRoom(services.ChatRoom(chatID), "new_message", message)
	}
	services.SendUnreadCounts(db, chat.OtherParticipant(callerID))

	respondData(c, http.StatusCreated, message)
}

// CloseChat handles PUT /api/v1/chats/:id/close
func CloseChat(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}
	chatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	chat, err := services.CloseChat(config.GetDB(), chatID, callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, chat)
}
