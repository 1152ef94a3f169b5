package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tenniee/imposter/internal/model"
)

// VoteRepo persists vote projections, keyed (roomCode, voterId) so a later
// vote from the same voter replaces the earlier one.
type VoteRepo interface {
	Upsert(ctx context.Context, vote *model.VoteRecord) error
	ListByRoom(ctx context.Context, roomCode string) ([]model.VoteRecord, error)
	DeleteByRoom(ctx context.Context, roomCode string) error
}

type voteRepo struct {
	collection *mongo.Collection
}

// NewVoteRepo creates a new vote repository.
func NewVoteRepo(db *mongo.Database) VoteRepo {
	return &voteRepo{
		collection: db.Collection("votes"),
	}
}

func (r *voteRepo) Upsert(ctx context.Context, vote *model.VoteRecord) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"roomCode": vote.RoomCode, "voterId": vote.VoterID},
		vote,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *voteRepo) ListByRoom(ctx context.Context, roomCode string) ([]model.VoteRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": roomCode})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var votes []model.VoteRecord
	if err := cursor.All(ctx, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *voteRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"roomCode": roomCode})
	return err
}
