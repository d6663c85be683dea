package realtime

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTest(t *testing.T) (*gorm.DB, *Hub) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.Notification{},
	))
	config.SetDB(db)
	services.SetBroadcaster(nil)

	hub := NewHub(NewMemoryPresenceStore())
	go hub.Run()
	return db, hub
}

func seedChat(t *testing.T, db *gorm.DB) (*models.Chat, *models.User, *models.User) {
	t.Helper()

	client := models.User{Username: "client", Email: "client@example.com", Name: "Client", ReferralCode: "REF-client"}
	admin := models.User{Username: "admin", Email: "admin@example.com", Name: "Admin", IsAdmin: true, ReferralCode: "REF-admin"}
	require.NoError(t, db.Create(&client).Error)
	require.NoError(t, db.Create(&admin).Error)

	chat := models.Chat{UserID: client.ID, AdminID: admin.ID, Subject: "Question"}
	require.NoError(t, db.Create(&chat).Error)
	return &chat, &client, &admin
}

func TestMarkMessagesReadAlwaysConfirms(t *testing.T) {
	db, hub := setupHandlerTest(t)
	chat, client, admin := seedChat(t, db)

	reader := newTestClient(hub, client.ID, "s-reader")
	watcher := newTestClient(hub, admin.ID, "s-watcher")
	hub.register <- reader
	hub.register <- watcher
	room := services.ChatRoom(chat.ID)
	hub.joinRoom(reader, room)
	hub.joinRoom(watcher, room)

	payload := json.RawMessage(fmt.Sprintf(`{"chat_id": %d}`, chat.ID))

	t.Run("Unread messages are flipped and announced", func(t *testing.T) {
		msg := models.ChatMessage{ChatID: chat.ID, UserID: admin.ID, Content: "hello"}
		require.NoError(t, db.Create(&msg).Error)

		reader.handleMarkMessagesRead(payload)

		event := receiveEvent(t, watcher)
		assert.Equal(t, "messages_marked_read", event.Event)
		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(event.Data, &data))
		assert.Equal(t, float64(client.ID), data["reader_id"])
		assert.Len(t, data["message_ids"], 1)

		var reloaded models.ChatMessage
		require.NoError(t, db.First(&reloaded, msg.ID).Error)
		assert.True(t, reloaded.IsRead)
	})

	t.Run("Repeat with nothing unread still confirms", func(t *testing.T) {
		// Drain the reader's own copy of the first confirmation
		for len(reader.send) > 0 {
			<-reader.send
		}

		reader.handleMarkMessagesRead(payload)

		event := receiveEvent(t, watcher)
		assert.Equal(t, "messages_marked_read", event.Event)
		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(event.Data, &data))
		assert.Empty(t, data["message_ids"])
		assert.Equal(t, float64(client.ID), data["reader_id"])
	})
}

func TestJoinChatConfirmsReadReceipt(t *testing.T) {
	db, hub := setupHandlerTest(t)
	chat, client, admin := seedChat(t, db)

	watcher := newTestClient(hub, admin.ID, "s-watcher")
	hub.register <- watcher
	hub.joinRoom(watcher, services.ChatRoom(chat.ID))

	joiner := newTestClient(hub, client.ID, "s-joiner")
	hub.register <- joiner

	// No unread counterpart messages exist; joining must still broadcast
	// the read receipt before the joined_chat confirmation
	joiner.handleJoinChat(json.RawMessage(fmt.Sprintf(`{"chat_id": %d}`, chat.ID)))

	event := receiveEvent(t, watcher)
	assert.Equal(t, "messages_marked_read", event.Event)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Empty(t, data["message_ids"])
}
