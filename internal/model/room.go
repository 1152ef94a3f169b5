package model

import "time"

// RoomRecord is the durable projection of a live room. The in-memory room is
// the single authority; this record exists for listing and audit only.
type RoomRecord struct {
	Code      string    `json:"code" bson:"code"`
	Phase     string    `json:"phase" bson:"phase"`
	HostName  string    `json:"hostName" bson:"hostName"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
