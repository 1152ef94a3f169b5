package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tenniee/imposter/internal/model"
)

// PlayerRepo persists player projections.
type PlayerRepo interface {
	Upsert(ctx context.Context, player *model.PlayerRecord) error
	ListByRoom(ctx context.Context, roomCode string) ([]model.PlayerRecord, error)
	UpdateScore(ctx context.Context, playerID string, score int) error
	DeleteByRoom(ctx context.Context, roomCode string) error
}

type playerRepo struct {
	collection *mongo.Collection
}

// NewPlayerRepo creates a new player repository.
func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection("players"),
	}
}

func (r *playerRepo) Upsert(ctx context.Context, player *model.PlayerRecord) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": player.ID},
		player,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *playerRepo) ListByRoom(ctx context.Context, roomCode string) ([]model.PlayerRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": roomCode})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []model.PlayerRecord
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepo) UpdateScore(ctx context.Context, playerID string, score int) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": playerID},
		bson.M{"$set": bson.M{"score": score}},
	)
	return err
}

func (r *playerRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"roomCode": roomCode})
	return err
}
