package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/Tenniee/imposter/internal/game"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    game.EventType `json:"type"`
	Payload interface{}    `json:"payload"`
}

// Connection is one subscriber's delivery channel. Send is drained by the
// transport's write pump and closed exactly once by the hub, on eviction,
// replacement, or room release.
type Connection struct {
	RoomCode   string
	PlayerName string
	Send       chan []byte
}

// Hub is the connection registry: per room, at most one live connection per
// display name. A second register for the same name replaces the first, so a
// reconnect after a dropped transport needs no explicit disconnect.
//
// The hub mutex is held for the whole of a broadcast. Sends are non-blocking,
// so a slow recipient cannot stall the others; a full or abandoned channel is
// evicted on the spot and the failure goes no further than a log line. The
// lock also gives every fan-out a stable view of the registrants, and it
// serializes sends so each subscriber sees events in emission order.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]*Connection // roomCode -> playerName -> conn
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*Connection),
	}
}

// Register upserts a connection under its room and player name. It sends
// nothing itself; the caller pushes a current-state snapshot right after.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[conn.RoomCode]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[conn.RoomCode] = room
	}
	if old, ok := room[conn.PlayerName]; ok && old != conn {
		close(old.Send)
		log.Printf("replaced registration for %s in room %s", conn.PlayerName, conn.RoomCode)
	}
	room[conn.PlayerName] = conn
}

// Unregister removes a connection, keyed by the connection itself (the only
// key known on a transport-level drop). No-op if a newer connection has
// already replaced it. Game state is untouched.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[conn.RoomCode]
	if !ok {
		return
	}
	if existing, ok := room[conn.PlayerName]; ok && existing == conn {
		delete(room, conn.PlayerName)
		close(conn.Send)
	}
	if len(room) == 0 {
		delete(h.rooms, conn.RoomCode)
	}
}

// UnregisterName removes whatever connection is registered under a name.
func (h *Hub) UnregisterName(roomCode, playerName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	if conn, ok := room[playerName]; ok {
		delete(room, playerName)
		close(conn.Send)
	}
	if len(room) == 0 {
		delete(h.rooms, roomCode)
	}
}

// Unicast delivers an event to exactly one registered subscriber
// (implements service.Broadcaster).
func (h *Hub) Unicast(roomCode, playerName string, event game.Event) {
	data, err := json.Marshal(&Message{Type: event.Type, Payload: event.Payload})
	if err != nil {
		log.Printf("marshal failed for %s event in room %s: %v", event.Type, roomCode, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	if conn, ok := room[playerName]; ok {
		h.deliver(room, playerName, conn, data)
	}
}

// Broadcast delivers an event to every registered subscriber in a room,
// independently per recipient (implements service.Broadcaster).
func (h *Hub) Broadcast(roomCode string, event game.Event) {
	data, err := json.Marshal(&Message{Type: event.Type, Payload: event.Payload})
	if err != nil {
		log.Printf("marshal failed for %s event in room %s: %v", event.Type, roomCode, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	for name, conn := range room {
		h.deliver(room, name, conn, data)
	}
}

// ReleaseRoom drops every registration for a room (implements
// service.Broadcaster). Used on room teardown.
func (h *Hub) ReleaseRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	for _, conn := range room {
		close(conn.Send)
	}
	delete(h.rooms, roomCode)
}

// RoomSize returns how many subscribers a room currently has.
func (h *Hub) RoomSize(roomCode string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomCode])
}

// deliver attempts one non-blocking send and evicts the registration on
// failure. Caller holds the lock; the evicted channel is closed here and
// never retried.
func (h *Hub) deliver(room map[string]*Connection, name string, conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		delete(room, name)
		close(conn.Send)
		log.Printf("evicted %s from room %s: send channel full or abandoned", name, conn.RoomCode)
	}
}
