package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment. Empty
// MongoURI or RedisURI disables that backend; the server then runs
// in-memory-only, which is a fully supported mode.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string
	RedisURI string
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	return &Config{
		Port:     getenv("PORT", "8080"),
		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getenv("MONGO_DB", "imposter"),
		RedisURI: os.Getenv("REDIS_URI"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
