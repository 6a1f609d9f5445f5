package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// handle embedding generation for query text
type Embedder struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewEmbedder(baseURL, model string) *Embedder {
	return &Embedder{
		BaseURL: baseURL,
		Model:   model,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed converts query text into its embedding vector. Blank input is
// rejected before any backend call; every backend failure comes back as
// EmbeddingError carrying the upstream message. One call, no retry.
func (e *Embedder) Embed(text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &InvalidQueryError{Field: "query"}
	}

	if e.Model == "simple" {
		return e.simpleEmbedding(text), nil
	}

	reqBody := embedRequest{
		Model:  e.Model,
		Prompt: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/api/embeddings", e.BaseURL)
	resp, err := e.Client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("failed to call embedding API: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{Err: fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(body))}
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(embedResp.Embedding) == 0 {
		return nil, &EmbeddingError{Err: fmt.Errorf("received empty embedding from backend")}
	}

	return embedResp.Embedding, nil
}

// simpleEmbedding creates a lightweight embedding using word frequency.
// Deterministic and local, used as the default model and in tests.
func (e *Embedder) simpleEmbedding(text string) []float32 {
	text = strings.ToLower(text)
	words := strings.Fields(text)

	embedding := make([]float32, 128)

	wordCounts := make(map[string]int)
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if len(word) > 0 {
			wordCounts[word]++
		}
	}

	for word, count := range wordCounts {
		hash := 0
		for _, char := range word {
			hash = hash*31 + int(char)
		}
		pos := (hash & 0x7FFFFFFF) % 128
		embedding[pos] += float32(count) / float32(len(words))
	}

	var norm float64
	for _, val := range embedding {
		norm += float64(val) * float64(val)
	}
	if norm > 0 {
		scale := float32(math.Sqrt(norm))
		for i := range embedding {
			embedding[i] /= scale
		}
	}

	return embedding
}

func (e *Embedder) TestConnection() error {
	// simple mode runs locally
	if e.Model == "simple" {
		return nil
	}

	url := fmt.Sprintf("%s/api/tags", e.BaseURL)
	resp, err := e.Client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to embedding backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding backend returned status %d", resp.StatusCode)
	}

	return nil
}
