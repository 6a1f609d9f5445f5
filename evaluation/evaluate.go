package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/podsight/podsight/config"
	"github.com/podsight/podsight/services"
)

type Question struct {
	ID            int    `json:"id"`
	Query         string `json:"query"`
	ExpectedGuest string `json:"expected_guest"`
	Notes         string `json:"notes"`
}

type EvaluationResult struct {
	QuestionID     int    `json:"question_id"`
	Query          string `json:"query"`
	ExpectedGuest  string `json:"expected_guest"`
	ReturnedGuests int    `json:"returned_guests"`
	Rank           int    `json:"rank"` // 1-based rank of the expected guest, 0 when absent
	Hit            bool   `json:"hit"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

type Metrics struct {
	TotalQueries    int                    `json:"total_queries"`
	Hits            int                    `json:"hits"`
	HitRate         float64                `json:"hit_rate"`
	MeanRank        float64                `json:"mean_rank"`
	AvgResponseTime float64                `json:"avg_response_time_ms"`
	Timestamp       string                 `json:"timestamp"`
	Configuration   map[string]interface{} `json:"configuration"`
}

type EvaluationReport struct {
	Metrics Metrics            `json:"metrics"`
	Results []EvaluationResult `json:"results"`
}

// Evaluator measures guest-retrieval quality: for each dataset query it runs
// the guest semantic search and checks where the expected guest landed.
type Evaluator struct {
	config   *config.Config
	searcher *services.Searcher
}

func NewEvaluator(cfg *config.Config, store services.DocumentStore, embedder services.EmbeddingClient) *Evaluator {
	return &Evaluator{
		config:   cfg,
		searcher: services.NewSearcher(store, embedder, cfg.SearchLimit, cfg.ListingLimit),
	}
}

func LoadDataset(filepath string) ([]Question, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	return questions, nil
}

func (e *Evaluator) Evaluate(questions []Question) (*EvaluationReport, error) {
	results := make([]EvaluationResult, 0, len(questions))

	totalResponseTime := int64(0)
	totalHitRank := 0
	hits := 0

	ctx := context.Background()

	fmt.Println("Starting evaluation...")
	fmt.Printf("Total queries: %d\n", len(questions))
	fmt.Println("---")

	for i, q := range questions {
		fmt.Printf("[%d/%d] Evaluating: %s\n", i+1, len(questions), q.Query)

		startTime := time.Now()

		records, err := e.searcher.SearchGuests(ctx, q.Query, e.config.SearchLimit)
		if err != nil {
			fmt.Printf("Failed: %v\n", err)
			continue
		}

		responseTime := time.Since(startTime).Milliseconds()

		// ranks compare normalized names, same as the API output
		expected := services.FormatGuestName(q.ExpectedGuest)
		rank := 0
		for j, record := range records {
			if record.GuestName == expected {
				rank = j + 1
				break
			}
		}

		result := EvaluationResult{
			QuestionID:     q.ID,
			Query:          q.Query,
			ExpectedGuest:  expected,
			ReturnedGuests: len(records),
			Rank:           rank,
			Hit:            rank > 0,
			ResponseTimeMs: responseTime,
		}
		results = append(results, result)

		totalResponseTime += responseTime
		if rank > 0 {
			hits++
			totalHitRank += rank
		}

		fmt.Printf("Completed in %dms (rank: %d of %d)\n", responseTime, rank, len(records))
	}

	totalQueries := len(results)
	hitRate := 0.0
	if totalQueries > 0 {
		hitRate = float64(hits) / float64(totalQueries)
	}

	meanRank := 0.0
	if hits > 0 {
		meanRank = float64(totalHitRank) / float64(hits)
	}

	avgResponseTime := 0.0
	if totalQueries > 0 {
		avgResponseTime = float64(totalResponseTime) / float64(totalQueries)
	}

	metrics := Metrics{
		TotalQueries:    totalQueries,
		Hits:            hits,
		HitRate:         hitRate,
		MeanRank:        meanRank,
		AvgResponseTime: avgResponseTime,
		Timestamp:       time.Now().Format(time.RFC3339),
		Configuration: map[string]interface{}{
			"search_limit": e.config.SearchLimit,
			"embed_model":  e.config.EmbeddingModel,
		},
	}

	return &EvaluationReport{
		Metrics: metrics,
		Results: results,
	}, nil
}

// save the evaluation report to a JSON file
func SaveReport(report *EvaluationReport, filepath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// print a summary of the evaluation results
func PrintSummary(report *EvaluationReport) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("EVALUATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total Queries:     %d\n", report.Metrics.TotalQueries)
	fmt.Printf("Hits:              %d\n", report.Metrics.Hits)
	fmt.Printf("Hit Rate:          %.2f%%\n", report.Metrics.HitRate*100)
	fmt.Printf("Mean Rank (hits):  %.2f\n", report.Metrics.MeanRank)
	fmt.Printf("Avg Response Time: %.0f ms\n", report.Metrics.AvgResponseTime)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\nConfiguration:")
	for key, value := range report.Metrics.Configuration {
		fmt.Printf("  %s: %v\n", key, value)
	}
	fmt.Println(strings.Repeat("=", 60) + "\n")
}
