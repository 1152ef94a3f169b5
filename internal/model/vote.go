package model

import "time"

// VoteRecord is the durable projection of one recorded vote. A voter has at
// most one record per room; later votes replace it.
type VoteRecord struct {
	RoomCode string    `json:"roomCode" bson:"roomCode"`
	VoterID  string    `json:"voterId" bson:"voterId"`
	TargetID string    `json:"targetId" bson:"targetId"`
	CastAt   time.Time `json:"castAt" bson:"castAt"`
}
