package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tenniee/imposter/internal/model"
)

// RoomRepo persists room projections.
type RoomRepo interface {
	Upsert(ctx context.Context, room *model.RoomRecord) error
	GetByCode(ctx context.Context, code string) (*model.RoomRecord, error)
	Delete(ctx context.Context, code string) error
}

type roomRepo struct {
	collection *mongo.Collection
}

// NewRoomRepo creates a new room repository.
func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{
		collection: db.Collection("rooms"),
	}
}

func (r *roomRepo) Upsert(ctx context.Context, room *model.RoomRecord) error {
	room.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"code": room.Code},
		room,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *roomRepo) GetByCode(ctx context.Context, code string) (*model.RoomRecord, error) {
	var room model.RoomRecord
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) Delete(ctx context.Context, code string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	return err
}
