package service

import "github.com/Tenniee/imposter/internal/game"

// Broadcaster delivers events to live subscribers (avoids an import cycle
// with the ws package). Delivery is best-effort: implementations log and
// evict failed recipients instead of returning errors, so a dead subscriber
// never fails the command that triggered the send.
type Broadcaster interface {
	Broadcast(roomCode string, event game.Event)
	Unicast(roomCode, playerName string, event game.Event)
	ReleaseRoom(roomCode string)
}
