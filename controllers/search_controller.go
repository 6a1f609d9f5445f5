package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/podsight/podsight/config"
	"github.com/podsight/podsight/models"
	"github.com/podsight/podsight/services"

	"github.com/gin-gonic/gin"
)

type SearchController struct {
	config   *config.Config
	searcher *services.Searcher
}

func NewSearchController(cfg *config.Config, store services.DocumentStore, embedder services.EmbeddingClient) *SearchController {
	return &SearchController{
		config:   cfg,
		searcher: services.NewSearcher(store, embedder, cfg.SearchLimit, cfg.ListingLimit),
	}
}

// VectorSearch handles POST /api/vector-search.
func (sc *SearchController) VectorSearch(c *gin.Context) {
	startTime := time.Now()

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	log.Printf("Video search: '%s' (limit: %d)", req.Query, req.Limit)

	records, err := sc.searcher.SearchVideos(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("Video search returned %d results in %v", len(records), time.Since(startTime))
	c.JSON(http.StatusOK, records)
}

// TopVideos handles GET /api/top-videos.
func (sc *SearchController) TopVideos(c *gin.Context) {
	limit := queryLimit(c, sc.config.ListingLimit)

	records, err := sc.searcher.TopVideos(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// VectorSearchGuests handles POST /api/vector-search-guests.
func (sc *SearchController) VectorSearchGuests(c *gin.Context) {
	startTime := time.Now()

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	log.Printf("Guest search: '%s' (limit: %d)", req.Query, req.Limit)

	records, err := sc.searcher.SearchGuests(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("Guest search returned %d results in %v", len(records), time.Since(startTime))
	c.JSON(http.StatusOK, records)
}

// TopGuests handles GET /api/top-guests.
func (sc *SearchController) TopGuests(c *gin.Context) {
	limit := queryLimit(c, sc.config.ListingLimit)

	records, err := sc.searcher.TopGuests(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func queryLimit(c *gin.Context, defaultLimit int) int {
	raw := c.DefaultQuery("limit", "")
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return limit
}

// respondError maps the error taxonomy onto HTTP statuses: invalid input is
// the caller's fault, everything else is a backend failure.
func respondError(c *gin.Context, err error) {
	var invalidQuery *services.InvalidQueryError
	if errors.As(err, &invalidQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	log.Printf("Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
