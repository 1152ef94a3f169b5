package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tenniee/imposter/internal/cache"
	"github.com/Tenniee/imposter/internal/config"
	"github.com/Tenniee/imposter/internal/repository"
	"github.com/Tenniee/imposter/internal/service"
	"github.com/Tenniee/imposter/internal/transport/rest"
	"github.com/Tenniee/imposter/internal/transport/ws"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Durable store is optional: the live engine is authoritative and the
	// server runs fine in-memory-only.
	var (
		roomRepo   repository.RoomRepo
		playerRepo repository.PlayerRepo
		voteRepo   repository.VoteRepo
		promptRepo repository.PromptRepo
	)
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")

		db := mongoClient.Database(cfg.MongoDB)
		roomRepo = repository.NewRoomRepo(db)
		playerRepo = repository.NewPlayerRepo(db)
		voteRepo = repository.NewVoteRepo(db)
		promptRepo = repository.NewPromptRepo(db)
	} else {
		log.Println("MONGO_URI not set, running without durable store")
	}

	var (
		roomCache   cache.RoomCache
		leaderboard cache.LeaderboardCache
	)
	if cfg.RedisURI != "" {
		redisAddr := strings.TrimPrefix(cfg.RedisURI, "redis://")
		rdb := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")

		roomCache = cache.NewRoomCache(rdb)
		leaderboard = cache.NewLeaderboardCache(rdb)
	} else {
		log.Println("REDIS_URI not set, running without cache")
	}

	wsHub := ws.NewHub()

	promptSvc := service.NewPromptService(promptRepo)
	gameSvc := service.NewGameService(promptSvc, roomRepo, playerRepo, voteRepo, roomCache, leaderboard)
	gameSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		GameService: gameSvc,
		WSHub:       wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/start")
		log.Println("  POST /v1/rooms/{code}/answers")
		log.Println("  POST /v1/rooms/{code}/begin-voting")
		log.Println("  POST /v1/rooms/{code}/votes")
		log.Println("  POST /v1/rooms/{code}/restart")
		log.Println("  POST /v1/rooms/{code}/end")
		log.Println("  GET  /v1/rooms/{code}/leaderboard")
		log.Println("  WS   /v1/ws/rooms/{code}?name={playerName}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
