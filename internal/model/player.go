package model

import "time"

// PlayerRecord is the durable projection of a room member.
type PlayerRecord struct {
	ID       string    `json:"id" bson:"_id"`
	RoomCode string    `json:"roomCode" bson:"roomCode"`
	Name     string    `json:"name" bson:"name"`
	IsHost   bool      `json:"isHost" bson:"isHost"`
	Score    int       `json:"score" bson:"score"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}
