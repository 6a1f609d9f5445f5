package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI        string
	MongoDatabase   string
	VideoCollection string
	GuestCollection string

	EmbeddingURL   string // "http://localhost:11434"
	EmbeddingModel string

	Port        string
	Environment string

	SearchLimit  int
	ListingLimit int
}

func Load() *Config {
	getEnv := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	getEnvInt := func(key string, defaultValue int) int {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return defaultValue
		}
		return value
	}

	return &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "podsight"),
		VideoCollection: getEnv("VIDEO_COLLECTION", "videos"),
		GuestCollection: getEnv("GUEST_COLLECTION", "guests_with_embeddings"),

		// Embedding backend
		EmbeddingURL:   getEnv("EMBEDDING_URL", "http://localhost:11434"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "simple"),

		// Application settings
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Result caps
		SearchLimit:  getEnvInt("SEARCH_LIMIT", 10),
		ListingLimit: getEnvInt("LISTING_LIMIT", 20),
	}
}
