package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks jucity-ai/internal/rag Embedder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/vectorstore"
)

const (
	// scoreFloor is the hard similarity floor: candidates below it are never
	// considered relevant, whatever the adaptive threshold decides.
	scoreFloor = float32(0.25)
	// minKeep and maxKeep bound the target candidate band. The maxKeep cap is
	// authoritative and applied uniformly after threshold selection.
	minKeep = 2
	maxKeep = 6
)

// Embedder maps texts to fixed-length vectors. Defined here consumer-first;
// implemented by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// RetrievalError wraps a vector search failure. Hint carries an actionable
// note for operators when one can be derived from the underlying error.
type RetrievalError struct {
	Err  error
	Hint string
}

func (e *RetrievalError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("retrieval failed: %v (%s)", e.Err, e.Hint)
	}
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retriever embeds questions and produces a bounded, deduplicated candidate
// set from the vector store through adaptive thresholding.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	logger     *slog.Logger
}

// NewRetriever creates a retriever over the given embedder and vector store.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		logger:     slog.Default(),
	}
}

// Retrieve embeds the question, queries the vector store for the topK nearest
// chunks and returns the candidates surviving the adaptive threshold, capped
// at six, in descending vector-score order.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]SearchCandidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("failed to embed question: %w", err)}
	}
	if len(embeddings) == 0 {
		return nil, &RetrievalError{Err: fmt.Errorf("no embedding returned for question")}
	}

	results, err := r.store.Search(ctx, r.collection, embeddings[0], topK)
	if err != nil {
		return nil, &RetrievalError{Err: err, Hint: dimensionHint(err)}
	}

	candidates := make([]SearchCandidate, 0, len(results))
	for _, res := range results {
		// Payloads without text or file metadata cannot ground an answer.
		if res.Payload.Text == "" || res.Payload.FilePath == "" {
			logger.WarnContext(ctx, "dropping search result with incomplete payload", "chunk_id", res.Payload.ChunkID)
			continue
		}
		candidates = append(candidates, SearchCandidate{
			FilePath:    res.Payload.FilePath,
			Heading:     res.Payload.Heading,
			ChunkID:     res.Payload.ChunkID,
			Text:        res.Payload.Text,
			VectorScore: res.Score,
		})
	}

	kept := applyAdaptiveThreshold(candidates)
	if len(kept) > maxKeep {
		kept = kept[:maxKeep]
	}

	logger.InfoContext(ctx, "retrieval completed",
		"question_length", len(question),
		"raw_results", len(results),
		"kept", len(kept),
	)
	return kept, nil
}

// applyAdaptiveThreshold picks a per-query similarity cutoff. Each distinct
// candidate score is tried as a threshold in descending order, then the hard
// floor; the first threshold keeping between minKeep and maxKeep candidates
// wins. When no threshold qualifies, whatever clears the hard floor survives
// (the caller caps the result).
func applyAdaptiveThreshold(candidates []SearchCandidate) []SearchCandidate {
	// The hard floor is absolute: nothing below it is ever a candidate.
	candidates = keepAbove(candidates, scoreFloor)
	if len(candidates) == 0 {
		return nil
	}

	distinct := make(map[float32]struct{}, len(candidates))
	for _, c := range candidates {
		distinct[c.VectorScore] = struct{}{}
	}
	thresholds := make([]float32, 0, len(distinct)+1)
	for score := range distinct {
		thresholds = append(thresholds, score)
	}
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] > thresholds[j] })
	thresholds = append(thresholds, scoreFloor)

	for _, threshold := range thresholds {
		count := 0
		for _, c := range candidates {
			if c.VectorScore >= threshold {
				count++
			}
		}
		if count >= minKeep && count <= maxKeep {
			return keepAbove(candidates, threshold)
		}
	}

	return keepAbove(candidates, scoreFloor)
}

// keepAbove returns candidates scoring at or above the threshold, preserving
// their original order.
func keepAbove(candidates []SearchCandidate, threshold float32) []SearchCandidate {
	kept := make([]SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.VectorScore >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// dimensionHint inspects a vector store error for signs of a vector-dimension
// mismatch and returns an operator hint, or "".
func dimensionHint(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "dimension") || strings.Contains(msg, "vector size") {
		return "vector dimension mismatch: rebuild the index with the current embedding model (POST /api/reindex)"
	}
	return ""
}
