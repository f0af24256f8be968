package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/kb"
	"jucity-ai/internal/llm"
	"jucity-ai/internal/vectorstore"
)

// Pipeline rebuilds the vector collection from the markdown corpus. A rebuild
// replaces the collection wholesale; point ids are derived from chunk ids, so
// re-running over identical content is idempotent.
type Pipeline struct {
	corpusRoot  string
	chunker     *kb.Chunker
	embedder    *llm.EmbeddingsClient
	vectorStore vectorstore.VectorStore
	collection  string
	vectorSize  int
	logger      *slog.Logger
}

// NewPipeline creates a reindexing pipeline over the corpus root.
func NewPipeline(
	corpusRoot string,
	embedder *llm.EmbeddingsClient,
	vectorStore vectorstore.VectorStore,
	collection string,
	vectorSize int,
) *Pipeline {
	return &Pipeline{
		corpusRoot:  corpusRoot,
		chunker:     kb.NewChunker(),
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		vectorSize:  vectorSize,
		logger:      slog.Default(),
	}
}

// Reindex chunks every corpus document, embeds the chunks, and upserts them
// into a freshly recreated collection. Per-document failures are logged and
// counted but do not stop the run; the returned report says what happened.
func (p *Pipeline) Reindex(ctx context.Context) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := kb.LoadCorpus(p.corpusRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	logger.InfoContext(ctx, "starting reindex", "documents", len(docs), "collection", p.collection)

	if err := p.vectorStore.RecreateCollection(ctx, p.collection, p.vectorSize); err != nil {
		return nil, fmt.Errorf("failed to recreate collection: %w", err)
	}

	report := &Report{DocsProcessed: len(docs)}
	var chunkSizes []int

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		chunks := p.chunker.Chunk(doc.FilePath, doc.Text)
		if len(chunks) == 0 {
			logger.WarnContext(ctx, "document produced no chunks", "file_path", doc.FilePath)
			report.DocsWithoutChunks++
			continue
		}

		if err := p.indexChunks(ctx, chunks); err != nil {
			logger.ErrorContext(ctx, "failed to index document", "file_path", doc.FilePath, "error", err)
			report.Errors++
			continue
		}

		report.ChunksIndexed += len(chunks)
		for _, c := range chunks {
			chunkSizes = append(chunkSizes, len([]rune(c.Text)))
		}
	}

	report.ChunkRuneStats = computeRuneStats(chunkSizes)
	logger.InfoContext(ctx, "reindex completed",
		"documents", report.DocsProcessed, "chunks", report.ChunksIndexed, "errors", report.Errors)
	return report, nil
}

func (p *Pipeline) indexChunks(ctx context.Context, chunks []kb.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		points[i] = vectorstore.Point{
			ID:  PointID(c.ChunkID),
			Vec: embeddings[i],
			Payload: vectorstore.Payload{
				Text:     c.Text,
				FilePath: c.FilePath,
				Heading:  c.Heading,
				ChunkID:  c.ChunkID,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// PointID derives the stable vector point id for a chunk id. Identical chunk
// ids always map to the same point, so re-upserting overwrites in place.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}
