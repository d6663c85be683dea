package realtime

import (
	"encoding/json"
	"log"
)

// Event is the wire frame exchanged over the socket in both directions.
// Event names are the wire contract; renaming any is a breaking change.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound is a server frame addressed to a room
type outbound struct {
	room    string
	payload []byte
}

// Hub maintains live connections, room membership, and presence. The Run
// goroutine owns the clients and rooms maps; all mutation goes through the
// register/unregister/join/leave/broadcast channels, so no locking is
// needed on them.
type Hub struct {
	presence PresenceStore

	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	joins      chan roomChange
	broadcast  chan outbound
}

type roomChange struct {
	client *Client
	room   string
	join   bool
}

// NewHub creates a hub backed by the given presence store
func NewHub(presence PresenceStore) *Hub {
	return &Hub{
		presence:   presence,
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joins:      make(chan roomChange),
		broadcast:  make(chan outbound, 256),
	}
}

// Presence exposes the hub's presence store
func (h *Hub) Presence() PresenceStore {
	return h.presence
}

// Run processes hub commands until the program exits. Start it once, in
// its own goroutine, before serving connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.presence.Add(client.userID, client.sessionID)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for room := range client.rooms {
					h.removeFromRoom(client, room)
				}
				h.presence.Remove(client.userID, client.sessionID)
				client.closeSend()
			}

		case change := <-h.joins:
			if change.join {
				if h.rooms[change.room] == nil {
					h.rooms[change.room] = make(map[*Client]struct{})
				}
				h.rooms[change.room][change.client] = struct{}{}
				change.client.rooms[change.room] = struct{}{}
			} else {
				h.removeFromRoom(change.client, change.room)
				delete(change.client.rooms, change.room)
			}

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.room] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer: drop the session rather than block
					// the hub. The client re-pulls state on reconnect.
					delete(h.clients, client)
					for room := range client.rooms {
						h.removeFromRoom(client, room)
					}
					h.presence.Remove(client.userID, client.sessionID)
					client.closeSend()
				}
			}
		}
	}
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// EmitToRoom marshals and queues an event for every session in a room.
// There is no replay: sessions not connected at emit time miss the event
// and must re-pull state on reconnect.
func (h *Hub) EmitToRoom(room, event string, data interface{}) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		log.Printf("Error marshaling %q event: %v", event, err)
		return
	}
	h.broadcast <- outbound{room: room, payload: payload}
}

func (h *Hub) joinRoom(client *Client, room string) {
	h.joins <- roomChange{client: client, room: room, join: true}
}

func (h *Hub) leaveRoom(client *Client, room string) {
	h.joins <- roomChange{client: client, room: room, join: false}
}

func marshalEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: event, Data: raw})
}
