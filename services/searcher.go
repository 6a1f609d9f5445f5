package services

import (
	"context"

	"github.com/podsight/podsight/models"
)

// EmbeddingClient turns query text into a vector.
type EmbeddingClient interface {
	Embed(text string) ([]float32, error)
}

// DocumentStore is the read surface of the document store: a nearest-neighbor
// query and a field-ordered listing per collection.
type DocumentStore interface {
	VideoNearest(ctx context.Context, queryVector []float32, limit int) ([]models.Match, error)
	TopVideos(ctx context.Context, limit int) ([]models.Match, error)
	GuestNearest(ctx context.Context, queryVector []float32, limit int) ([]models.Match, error)
	TopGuests(ctx context.Context, limit int) ([]models.Match, error)
}

// Searcher composes embedding, retrieval, assembly and ranking into the four
// supported operations. It holds no per-request state.
type Searcher struct {
	store        DocumentStore
	embedder     EmbeddingClient
	searchLimit  int
	listingLimit int
}

func NewSearcher(store DocumentStore, embedder EmbeddingClient, searchLimit, listingLimit int) *Searcher {
	return &Searcher{
		store:        store,
		embedder:     embedder,
		searchLimit:  searchLimit,
		listingLimit: listingLimit,
	}
}

// SearchVideos runs the semantic video search: embed the query, pull the
// nearest videos, assemble with distances, rank by performance.
func (s *Searcher) SearchVideos(ctx context.Context, query string, limit int) ([]models.VideoRecord, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}

	queryVector, err := s.embedder.Embed(query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.VideoNearest(ctx, queryVector, limit)
	if err != nil {
		return nil, &StoreQueryError{Op: "video nearest-neighbor", Err: err}
	}

	records := AssembleVideos(matches, true)
	RankVideos(records, RankPerformance)
	return records, nil
}

// TopVideos lists videos in the store's own performance order. No distance,
// no secondary ranking.
func (s *Searcher) TopVideos(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	if limit <= 0 {
		limit = s.listingLimit
	}

	matches, err := s.store.TopVideos(ctx, limit)
	if err != nil {
		return nil, &StoreQueryError{Op: "top videos", Err: err}
	}

	return AssembleVideos(matches, false), nil
}

// SearchGuests runs the semantic guest search: embed the query, pull the
// nearest guest aggregates, assemble with distances, rank by avg_performance.
func (s *Searcher) SearchGuests(ctx context.Context, query string, limit int) ([]models.GuestRecord, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}

	queryVector, err := s.embedder.Embed(query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GuestNearest(ctx, queryVector, limit)
	if err != nil {
		return nil, &StoreQueryError{Op: "guest nearest-neighbor", Err: err}
	}

	records := AssembleGuests(matches, true)
	RankGuests(records, RankAvgPerformance)
	return records, nil
}

// TopGuests lists guest aggregates by combined_score. The store already
// orders the listing; the stable re-rank only guards the business order.
func (s *Searcher) TopGuests(ctx context.Context, limit int) ([]models.GuestRecord, error) {
	if limit <= 0 {
		limit = s.listingLimit
	}

	matches, err := s.store.TopGuests(ctx, limit)
	if err != nil {
		return nil, &StoreQueryError{Op: "top guests", Err: err}
	}

	records := AssembleGuests(matches, false)
	RankGuests(records, RankCombinedScore)
	return records, nil
}
