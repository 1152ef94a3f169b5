package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Tenniee/imposter/internal/game"
	"github.com/Tenniee/imposter/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Party game joined from phones on arbitrary origins
	},
}

// Handler upgrades subscriptions to WebSocket connections and runs their
// read/write pumps.
type Handler struct {
	hub     *Hub
	gameSvc *service.GameService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, gameSvc *service.GameService) *Handler {
	return &Handler{
		hub:     hub,
		gameSvc: gameSvc,
	}
}

// Subscribe handles GET /v1/ws/rooms/{code}?name={playerName}. The new
// subscriber immediately receives a current-state snapshot, then every event
// for the room until it disconnects.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	name := r.URL.Query().Get("name")

	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	ok, err := h.gameSvc.HasPlayer(code, name)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if !ok {
		http.Error(w, "player not in room", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomCode:   code,
		PlayerName: name,
		Send:       make(chan []byte, 256),
	}

	h.hub.Register(conn)
	log.Printf("player %s subscribed to room %s", name, code)

	// Snapshot first, so a reconnecting client is never without context.
	if snap, err := h.gameSvc.Snapshot(code); err == nil {
		h.hub.Unicast(code, name, game.Event{
			Type:    game.EventCurrentState,
			ToName:  name,
			Payload: snap,
		})
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// Commands arrive over REST; inbound frames are only keepalives.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
