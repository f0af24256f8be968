package rag

// SearchCandidate is a transient, per-query retrieval candidate. Its lifetime
// is one request.
type SearchCandidate struct {
	FilePath string
	Heading  string
	ChunkID  string
	Text     string
	// VectorScore is the cosine similarity reported by the vector store, in [-1, 1].
	VectorScore float32
	// LexicalOverlap is the number of distinct tokens shared with the question.
	LexicalOverlap int
	// RerankScore is the composite score assigned by the lexical reranker.
	RerankScore float64
}

// ContextChunk is the unit passed downstream to answer generation. FilePath
// and Text are always non-empty; an assembled context holds at most one chunk
// per source file.
type ContextChunk struct {
	FilePath string
	Heading  string
	ChunkID  string
	Text     string
}
