package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/scrawlhq/scrawl/backend/internal/game"
)

// EventHandler is the inbound half of the game engine, as seen by the
// transport.
type EventHandler interface {
	HandleJoin(connID, roomID, username string)
	HandleWordChosen(connID, word string)
	HandleDrawing(connID string, payload []byte)
	HandleUndo(connID, roomID string)
	HandleChat(connID, roomID, username, message string)
	HandleDisconnect(connID string)
}

// Every frame in both directions is an envelope: a named event plus its
// payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connected clients and their room groups, routes inbound
// envelopes to the game engine, and implements the engine's outbound
// Gateway contract. Handlers run on the reading client's goroutine, so
// outbound events caused by one inbound event are enqueued before the
// room's next event is handled.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]bool
	clients map[string]*Client
	byRoom  map[*Client]string

	handler EventHandler
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]bool),
		clients: make(map[string]*Client),
		byRoom:  make(map[*Client]string),
	}
}

// SetHandler wires the engine in after construction; the hub and engine
// reference each other.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("Client %s connected (total: %d)", c.id, total)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	if roomID, ok := h.byRoom[c]; ok {
		delete(h.byRoom, c)
		if clients, ok := h.rooms[roomID]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.rooms, roomID)
				log.Printf("Room group %s closed (empty)", roomID)
			}
		}
	}
	close(c.send)
	h.mu.Unlock()

	if h.handler != nil {
		h.handler.HandleDisconnect(c.id)
	}
}

// joinRoom adds a client to a room's broadcast group. A client belongs
// to at most one group; rejoining moves it.
func (h *Hub) joinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.byRoom[c]; ok && prev != roomID {
		if clients, ok := h.rooms[prev]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.rooms, prev)
			}
		}
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	h.byRoom[c] = roomID
}

func (h *Hub) dispatch(c *Client, message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Printf("Client %s sent an invalid frame: %v", c.id, err)
		h.Unicast(c.id, game.EventError, game.NoticePayload{Message: "Invalid message."})
		return
	}

	switch env.Event {
	case game.EventJoinRoom:
		var p game.JoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.RoomID == "" || p.Username == "" {
			h.Unicast(c.id, game.EventError, game.NoticePayload{Message: "A room id and username are required to join."})
			return
		}
		h.joinRoom(c, p.RoomID)
		h.handler.HandleJoin(c.id, p.RoomID, p.Username)

	case game.EventWordChosen:
		var p game.WordChosenPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.Unicast(c.id, game.EventError, game.NoticePayload{Message: "Invalid word choice."})
			return
		}
		h.handler.HandleWordChosen(c.id, p.ChosenWord)

	case game.EventDrawing:
		// The engine validates the payload shape itself.
		h.handler.HandleDrawing(c.id, env.Data)

	case game.EventUndo:
		var p game.UndoPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.Unicast(c.id, game.EventError, game.NoticePayload{Message: "Invalid undo request."})
			return
		}
		h.handler.HandleUndo(c.id, p.RoomID)

	case game.EventChat:
		var p game.ChatPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.Unicast(c.id, game.EventError, game.NoticePayload{Message: "Invalid chat message."})
			return
		}
		h.handler.HandleChat(c.id, p.RoomID, p.Username, p.Message)

	default:
		log.Printf("Client %s sent unknown event %q", c.id, env.Event)
		h.Unicast(c.id, game.EventError, game.NoticePayload{Message: "Unknown event."})
	}
}

func encodeFrame(event string, payload any) []byte {
	data, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("Failed to encode %s frame: %v", event, err)
		return nil
	}
	return data
}

// Broadcast sends an event to every member of a room group.
func (h *Hub) Broadcast(roomID, event string, payload any) {
	data := encodeFrame(event, payload)
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		c.enqueue(data)
	}
}

// BroadcastExcept sends an event to every room member but the sender.
func (h *Hub) BroadcastExcept(roomID, senderID, event string, payload any) {
	data := encodeFrame(event, payload)
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if c.id != senderID {
			c.enqueue(data)
		}
	}
}

// Unicast sends an event to a single connection.
func (h *Hub) Unicast(connID, event string, payload any) {
	data := encodeFrame(event, payload)
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[connID]; ok {
		c.enqueue(data)
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetActiveRooms reports connected-client counts per room group.
func (h *Hub) GetActiveRooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	active := make(map[string]int, len(h.rooms))
	for roomID, clients := range h.rooms {
		active[roomID] = len(clients)
	}
	return active
}
