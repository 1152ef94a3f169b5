package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Tenniee/imposter/internal/model"
)

// PromptRepo stores prompt pairs and hands out random ones for new rounds.
type PromptRepo interface {
	Insert(ctx context.Context, pairs []model.PromptPairRecord) error
	Random(ctx context.Context) (*model.PromptPairRecord, error)
	Count(ctx context.Context) (int64, error)
}

type promptRepo struct {
	collection *mongo.Collection
}

// NewPromptRepo creates a new prompt repository.
func NewPromptRepo(db *mongo.Database) PromptRepo {
	return &promptRepo{
		collection: db.Collection("prompt_pairs"),
	}
}

func (r *promptRepo) Insert(ctx context.Context, pairs []model.PromptPairRecord) error {
	docs := make([]interface{}, len(pairs))
	for i, pair := range pairs {
		docs[i] = pair
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// Random returns one uniformly sampled pair, or nil if the collection is
// empty.
func (r *promptRepo) Random(ctx context.Context) (*model.PromptPairRecord, error) {
	pipeline := []bson.M{{"$sample": bson.M{"size": 1}}}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pairs []model.PromptPairRecord
	if err := cursor.All(ctx, &pairs); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	return &pairs[0], nil
}

func (r *promptRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
