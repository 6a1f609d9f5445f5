package storage

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/podsight/podsight/config"
	"github.com/podsight/podsight/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fixed field names in the stored collections. Video documents carry their
// embedding under embedding_field; guest documents, aggregated per person and
// keyed by the raw guest name, carry theirs under average_embedding.
const (
	videoVectorField = "embedding_field"
	guestVectorField = "average_embedding"

	videoOrderField = "performance"
	guestOrderField = "combined_score"
)

// MongoStore handles the read-only queries against the two collections.
type MongoStore struct {
	client *mongo.Client
	videos *mongo.Collection
	guests *mongo.Collection
	config *config.Config
}

func NewMongoStore(cfg *config.Config) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.MongoDatabase)

	log.Printf("Connected to MongoDB: %s (%s, %s)", cfg.MongoDatabase, cfg.VideoCollection, cfg.GuestCollection)

	return &MongoStore{
		client: client,
		videos: database.Collection(cfg.VideoCollection),
		guests: database.Collection(cfg.GuestCollection),
		config: cfg,
	}, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// VideoNearest returns the videos closest to the query vector under cosine
// distance, nearest first.
func (s *MongoStore) VideoNearest(ctx context.Context, queryVector []float32, limit int) ([]models.Match, error) {
	return s.nearest(ctx, s.videos, videoVectorField, queryVector, limit)
}

// TopVideos returns videos ordered by stored performance, best first.
func (s *MongoStore) TopVideos(ctx context.Context, limit int) ([]models.Match, error) {
	return s.listing(ctx, s.videos, videoOrderField, limit)
}

// GuestNearest returns the guest aggregates closest to the query vector under
// cosine distance, nearest first.
func (s *MongoStore) GuestNearest(ctx context.Context, queryVector []float32, limit int) ([]models.Match, error) {
	return s.nearest(ctx, s.guests, guestVectorField, queryVector, limit)
}

// TopGuests returns guest aggregates ordered by stored combined_score,
// best first.
func (s *MongoStore) TopGuests(ctx context.Context, limit int) ([]models.Match, error) {
	return s.listing(ctx, s.guests, guestOrderField, limit)
}

// nearest performs the cosine scan: fetch the collection, score every document
// that carries a comparable vector, order by distance and cut at limit.
// Works against plain MongoDB, no Atlas vector index required.
func (s *MongoStore) nearest(ctx context.Context, coll *mongo.Collection, vectorField string, queryVector []float32, limit int) ([]models.Match, error) {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer cursor.Close(ctx)

	matches := []models.Match{}
	for cursor.Next(ctx) {
		var doc models.RawDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Warning: failed to decode document: %v", err)
			continue
		}

		embedding, ok := floatVector(doc, vectorField)
		if !ok || len(embedding) != len(queryVector) {
			continue
		}

		matches = append(matches, models.Match{
			Doc:         doc,
			Distance:    cosineDistance(queryVector, embedding),
			HasDistance: true,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// listing performs a plain field-ordered query, descending.
func (s *MongoStore) listing(ctx context.Context, coll *mongo.Collection, orderField string, limit int) ([]models.Match, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: orderField, Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer cursor.Close(ctx)

	matches := []models.Match{}
	for cursor.Next(ctx) {
		var doc models.RawDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Warning: failed to decode document: %v", err)
			continue
		}
		matches = append(matches, models.Match{Doc: doc})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return matches, nil
}

// floatVector reads a stored embedding field, tolerating the element types
// the bson decoder may produce.
func floatVector(doc models.RawDocument, field string) ([]float32, bool) {
	raw, ok := doc[field]
	if !ok {
		return nil, false
	}

	var items []interface{}
	switch v := raw.(type) {
	case primitive.A:
		items = v
	case []interface{}:
		items = v
	default:
		return nil, false
	}

	vector := make([]float32, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case float64:
			vector[i] = float32(n)
		case float32:
			vector[i] = n
		case int32:
			vector[i] = float32(n)
		case int64:
			vector[i] = float32(n)
		default:
			return nil, false
		}
	}
	return vector, true
}

// cosineDistance is 1 minus cosine similarity; 0 means identical direction,
// 2 means opposite. Degenerate vectors compare as maximally distant.
func cosineDistance(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dotProduct/(math.Sqrt(normA)*math.Sqrt(normB))
}
