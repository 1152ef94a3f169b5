package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// PromptPairRecord is a stored prompt pair: the main question everyone else
// answers and the imposter variant.
type PromptPairRecord struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Main     string             `json:"main" bson:"main"`
	Imposter string             `json:"imposter" bson:"imposter"`
}
