package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/podsight/podsight/config"
	"github.com/podsight/podsight/models"
	"github.com/podsight/podsight/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureStore is an in-memory DocumentStore over a handful of documents,
// scoring nearest-neighbor queries with real cosine distances.
type fixtureStore struct {
	videos []models.RawDocument
	guests []models.RawDocument
	err    error

	lastLimit int
}

func (f *fixtureStore) nearest(docs []models.RawDocument, vectorField string, queryVector []float32, limit int) ([]models.Match, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}

	matches := []models.Match{}
	for _, doc := range docs {
		embedding, ok := doc[vectorField].([]float32)
		if !ok || len(embedding) != len(queryVector) {
			continue
		}
		matches = append(matches, models.Match{
			Doc:         doc,
			Distance:    cosine(queryVector, embedding),
			HasDistance: true,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (f *fixtureStore) listing(docs []models.RawDocument, orderField string, limit int) ([]models.Match, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}

	ordered := make([]models.RawDocument, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		vi, _ := ordered[i][orderField].(float64)
		vj, _ := ordered[j][orderField].(float64)
		return vi > vj
	})

	matches := []models.Match{}
	for _, doc := range ordered {
		if len(matches) == limit {
			break
		}
		matches = append(matches, models.Match{Doc: doc})
	}
	return matches, nil
}

func (f *fixtureStore) VideoNearest(ctx context.Context, queryVector []float32, limit int) ([]models.Match, error) {
	return f.nearest(f.videos, "embedding_field", queryVector, limit)
}

func (f *fixtureStore) TopVideos(ctx context.Context, limit int) ([]models.Match, error) {
	return f.listing(f.videos, "performance", limit)
}

func (f *fixtureStore) GuestNearest(ctx context.Context, queryVector []float32, limit int) ([]models.Match, error) {
	return f.nearest(f.guests, "average_embedding", queryVector, limit)
}

func (f *fixtureStore) TopGuests(ctx context.Context, limit int) ([]models.Match, error) {
	return f.listing(f.guests, "combined_score", limit)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func embedText(t *testing.T, text string) []float32 {
	t.Helper()
	vector, err := services.NewEmbedder("", "simple").Embed(text)
	require.NoError(t, err)
	return vector
}

func newFixtureStore(t *testing.T) *fixtureStore {
	t.Helper()
	return &fixtureStore{
		videos: []models.RawDocument{
			{
				"_id":             "vid-elon",
				"title":           "Elon Musk on Rockets",
				"performance":     8.0,
				"guest_name":      "elon_musk",
				"views":           int64(500000),
				"embedding_field": embedText(t, "elon musk talks tesla rockets and spacex"),
			},
			{
				"_id":             "vid-garden",
				"title":           "Spring Gardening",
				"performance":     3.0,
				"guest_name":      "monty_don",
				"views":           int64(40000),
				"embedding_field": embedText(t, "gardening tips for spring flower beds"),
			},
		},
		guests: []models.RawDocument{
			{
				"_id":               "elon_musk",
				"avg_performance":   7.0,
				"combined_score":    9.1,
				"topics":            `['rockets podcast', 'electric cars']`,
				"most_recent_date":  "01 January 2023 at 10:00:00 UTC+0000",
				"average_embedding": embedText(t, "elon musk talks tesla rockets and spacex"),
			},
			{
				"_id":               "monty_don",
				"avg_performance":   4.0,
				"combined_score":    5.5,
				"topics":            []string{"gardening"},
				"average_embedding": embedText(t, "gardening tips for spring flower beds"),
			},
		},
	}
}

func setupRouter(store services.DocumentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{SearchLimit: 10, ListingLimit: 20}
	embedder := services.NewEmbedder("", "simple")
	searchController := NewSearchController(cfg, store, embedder)

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/vector-search", searchController.VectorSearch)
		api.GET("/top-videos", searchController.TopVideos)
		api.POST("/vector-search-guests", searchController.VectorSearchGuests)
		api.GET("/top-guests", searchController.TopGuests)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestVectorSearch(t *testing.T) {
	t.Run("returns the nearest video with normalized fields", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search",
			map[string]interface{}{"query": "elon musk", "limit": 1})
		require.Equal(t, http.StatusOK, resp.Code)

		var results []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
		require.Len(t, results, 1)

		assert.Equal(t, "Elon Musk", results[0]["guest_name"])

		distance, ok := results[0]["distance"].(float64)
		require.True(t, ok, "distance missing or not numeric")
		assert.True(t, distance >= 0 && distance <= 2, "distance %f outside cosine range", distance)
	})

	t.Run("sorts by performance descending", func(t *testing.T) {
		store := newFixtureStore(t)
		// make the nearest match the weakest performer
		store.videos[0]["performance"] = 1.0
		router := setupRouter(store)

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search",
			map[string]interface{}{"query": "elon musk"})
		require.Equal(t, http.StatusOK, resp.Code)

		var results []models.VideoRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "vid-garden", results[0].ID)
		assert.Equal(t, "vid-elon", results[1].ID)
	})

	t.Run("missing query is a 400", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search", map[string]interface{}{"limit": 5})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "No query provided", body["error"])
	})

	t.Run("whitespace query is a 400", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search", map[string]interface{}{"query": "   "})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("invalid body is a 400", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		req := httptest.NewRequest(http.MethodPost, "/api/vector-search", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("store failure is a 500 with an error body", func(t *testing.T) {
		store := newFixtureStore(t)
		store.err = errors.New("connection reset")
		router := setupRouter(store)

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search", map[string]interface{}{"query": "elon"})
		require.Equal(t, http.StatusInternalServerError, resp.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "connection reset")
	})
}

func TestTopVideosEndpoint(t *testing.T) {
	t.Run("store order, no distance field", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodGet, "/api/top-videos", nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var results []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
		require.Len(t, results, 2)

		assert.Equal(t, "vid-elon", results[0]["id"])
		for _, result := range results {
			_, present := result["distance"]
			assert.False(t, present, "listing records must not carry a distance")
		}
	})

	t.Run("limit defaults to 20 and accepts overrides", func(t *testing.T) {
		store := newFixtureStore(t)
		router := setupRouter(store)

		resp := doJSON(t, router, http.MethodGet, "/api/top-videos", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, 20, store.lastLimit)

		resp = doJSON(t, router, http.MethodGet, "/api/top-videos?limit=1", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, 1, store.lastLimit)

		var results []models.VideoRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
		assert.Len(t, results, 1)
	})

	t.Run("garbage limit falls back to the default", func(t *testing.T) {
		store := newFixtureStore(t)
		router := setupRouter(store)

		resp := doJSON(t, router, http.MethodGet, "/api/top-videos?limit=bogus", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, 20, store.lastLimit)
	})
}

func TestVectorSearchGuests(t *testing.T) {
	t.Run("returns ranked guests with normalized topics and distance", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search-guests",
			map[string]interface{}{"query": "elon musk tesla"})
		require.Equal(t, http.StatusOK, resp.Code)

		var results []models.GuestRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
		require.Len(t, results, 2)

		// avg_performance order, not distance order
		assert.Equal(t, "Elon Musk", results[0].GuestName)
		assert.Equal(t, []string{"rockets", "electric", "cars"}, results[0].Topics)
		assert.Equal(t, "2023-01-01T10:00:00Z", results[0].MostRecentDate.Date)
		require.NotNil(t, results[0].Distance)
		assert.Nil(t, results[0].CombinedScore)
	})

	t.Run("missing query is a 400", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodPost, "/api/vector-search-guests", map[string]interface{}{})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestTopGuestsEndpoint(t *testing.T) {
	t.Run("combined_score order, no distance field", func(t *testing.T) {
		router := setupRouter(newFixtureStore(t))

		resp := doJSON(t, router, http.MethodGet, "/api/top-guests", nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var results []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
		require.Len(t, results, 2)

		assert.Equal(t, "Elon Musk", results[0]["guest_name"])
		assert.Equal(t, 9.1, results[0]["combined_score"])
		for _, result := range results {
			_, present := result["distance"]
			assert.False(t, present)
		}
	})
}
