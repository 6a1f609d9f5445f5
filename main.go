package main

import (
	"fmt"
	"log"
	"os"

	"github.com/podsight/podsight/config"
	"github.com/podsight/podsight/controllers"
	"github.com/podsight/podsight/evaluation"
	"github.com/podsight/podsight/services"
	"github.com/podsight/podsight/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment as-is")
	}

	if len(os.Args) > 1 && os.Args[1] == "evaluate" {
		// usage: go run main.go evaluate [dataset.json]
		runEvaluation()
		return
	}

	runServer()
}

func runServer() {
	cfg := config.Load()

	mongoStore, err := storage.NewMongoStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoStore.Close()

	embedder := services.NewEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)
	if err := embedder.TestConnection(); err != nil {
		log.Printf("Warning: embedding backend connection test failed: %v", err)
	} else {
		log.Println("Connected to embedding backend")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	searchController := controllers.NewSearchController(cfg, mongoStore, embedder)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "podsight",
		})
	})

	api := router.Group("/api")
	{
		api.POST("/vector-search", searchController.VectorSearch)
		api.GET("/top-videos", searchController.TopVideos)
		api.POST("/vector-search-guests", searchController.VectorSearchGuests)
		api.GET("/top-guests", searchController.TopGuests)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Search API starting on %s", addr)
	log.Printf("MongoDB: %s", cfg.MongoDatabase)
	log.Printf("Embedding model: %s", cfg.EmbeddingModel)
	log.Printf("Environment: %s", cfg.Environment)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runEvaluation() {
	log.Println("Starting evaluation mode...")

	cfg := config.Load()

	store, err := storage.NewMongoStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()

	datasetPath := "evaluation/dataset.json"
	if len(os.Args) > 2 {
		datasetPath = os.Args[2]
	}

	questions, err := evaluation.LoadDataset(datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("Loaded %d queries from %s", len(questions), datasetPath)

	embedder := services.NewEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)
	evaluator := evaluation.NewEvaluator(cfg, store, embedder)

	report, err := evaluator.Evaluate(questions)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	evaluation.PrintSummary(report)

	outputFile := "evaluation/results.json"
	if err := evaluation.SaveReport(report, outputFile); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}

	log.Printf("Evaluation complete! Results saved to %s", outputFile)
}
