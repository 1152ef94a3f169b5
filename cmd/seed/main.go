package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tenniee/imposter/internal/config"
	"github.com/Tenniee/imposter/internal/model"
	"github.com/Tenniee/imposter/internal/repository"
	"github.com/Tenniee/imposter/internal/service"
)

// Seeds the prompt_pairs collection with the built-in prompt set. Safe to
// re-run: it only inserts when the collection is empty.
func main() {
	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required to seed prompts")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	promptRepo := repository.NewPromptRepo(mongoClient.Database(cfg.MongoDB))

	count, err := promptRepo.Count(ctx)
	if err != nil {
		log.Fatal("Failed to count prompt pairs:", err)
	}
	if count > 0 {
		log.Printf("prompt_pairs already has %d documents, nothing to do", count)
		return
	}

	pairs := service.BuiltinPairs()
	records := make([]model.PromptPairRecord, len(pairs))
	for i, p := range pairs {
		records[i] = model.PromptPairRecord{Main: p.Main, Imposter: p.Imposter}
	}

	if err := promptRepo.Insert(ctx, records); err != nil {
		log.Fatal("Failed to insert prompt pairs:", err)
	}
	log.Printf("seeded %d prompt pairs", len(records))
}
