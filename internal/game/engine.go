package game

import (
	"crypto/rand"
	"sync"
)

// Engine owns the live set of rooms. It only guards the room map; everything
// inside a room is serialized by that room's own mutex, so commands against
// different rooms run fully concurrently.
type Engine struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom creates a room with the given host as its only player. taken,
// when non-nil, is an extra collision check consulted alongside the live
// room set; the in-memory set stays authoritative.
func (e *Engine) CreateRoom(hostName string, taken func(code string) bool) (*Room, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	code, err := e.generateCode(taken)
	if err != nil {
		return nil, err
	}

	room := newRoom(code, hostName)
	e.rooms[code] = room
	return room, nil
}

// Room looks up a live room by code.
func (e *Engine) Room(code string) (*Room, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	room, ok := e.rooms[code]
	if !ok {
		return nil, errNotFound("room %s not found", code)
	}
	return room, nil
}

// RemoveRoom drops a room from the live set. No-op if absent.
func (e *Engine) RemoveRoom(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rooms, code)
}

// RoomCount returns the number of live rooms.
func (e *Engine) RoomCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rooms)
}

// generateCode creates a 6-char alphanumeric code, collision-checked against
// live rooms and the caller's extra check. Caller holds the write lock.
func (e *Engine) generateCode(taken func(code string) bool) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", errInternal("failed to generate room code: %v", err)
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		if _, exists := e.rooms[codeStr]; exists {
			continue
		}
		if taken != nil && taken(codeStr) {
			continue
		}
		return codeStr, nil
	}

	return "", errInternal("failed to generate unique room code")
}
