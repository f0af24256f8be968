package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks jucity-ai/internal/vectorstore VectorStore

import "context"

// Payload is the chunk metadata stored alongside each vector.
type Payload struct {
	Text     string
	FilePath string
	Heading  string
	ChunkID  string
}

// Point represents a vector point with its chunk payload.
type Point struct {
	ID      string
	Vec     []float32
	Payload Payload
}

// SearchResult represents one hit from a similarity search.
type SearchResult struct {
	Score   float32
	Payload Payload
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist and
	// validates the vector size if it does.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// RecreateCollection drops and recreates the collection. Qdrant replaces
	// the collection atomically, so a rebuild racing a live query returns
	// results from either the old or the new index, never a corrupted one.
	RecreateCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k nearest stored vectors by cosine similarity.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
