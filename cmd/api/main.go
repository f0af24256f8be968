package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"jucity-ai/internal/config"
	"jucity-ai/internal/http"
	"jucity-ai/internal/indexer"
	"jucity-ai/internal/intent"
	"jucity-ai/internal/kb"
	"jucity-ai/internal/llm"
	"jucity-ai/internal/rag"
	"jucity-ai/internal/service"
	"jucity-ai/internal/session"
	"jucity-ai/internal/storage"
	"jucity-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// Initialize session database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	clock := session.SystemClock{}
	sessions, err := session.NewStore(db, clock)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	slog.Info("Session store initialized", "path", cfg.DBPath)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create reindex pipeline over the markdown knowledge base
	indexerPipeline := indexer.NewPipeline(
		cfg.KBPath,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.QdrantVectorSize,
	)

	// Audit the knowledge base: every file referenced by direct context must
	// exist and carry real content. Findings are warnings, not fatal.
	auditKB(cfg.KBPath, cfg.ContactsFile)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Assemble the answer pipeline
	classifier := intent.NewClassifier(intent.DefaultTable())
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.QdrantCollection)
	direct := rag.NewDirectBuilder(cfg.KBPath, rag.DefaultTopicFiles())
	assembler := rag.NewAssembler(cfg.KBPath, cfg.ContactsFile, direct)
	limiter := service.NewBookingHintLimiter(service.DefaultBookingHintInterval, clock)
	answerService := service.NewAnswerService(
		sessions,
		classifier,
		retriever,
		llmClient,
		direct,
		assembler,
		limiter,
		cfg.TopK,
	)
	slog.Info("Answer pipeline initialized", "kb_path", cfg.KBPath, "top_k", cfg.TopK)

	// Create router with dependencies
	deps := &http.Deps{
		AnswerService:   answerService,
		IndexerPipeline: indexerPipeline,
		VectorStore:     vectorStore,
		Collection:      cfg.QdrantCollection,
		Clock:           clock,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// auditKB checks that every document referenced by the direct-context tables
// exists, has enough content to ground an answer, and carries at least one
// markdown heading so the chunker can segment it.
func auditKB(root, contactsFile string) {
	seen := map[string]bool{contactsFile: true}
	required := []string{contactsFile}
	for _, files := range rag.DefaultTopicFiles() {
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				required = append(required, f)
			}
		}
	}

	issues := kb.Audit(root, kb.AuditConfig{
		RequiredFiles:    required,
		MustHaveHeadings: []string{"# "},
		MinChars:         40,
	})
	for _, issue := range issues {
		slog.Warn("knowledge base audit issue",
			"file_path", issue.FilePath,
			"missing", issue.Missing,
			"too_short", issue.TooShort,
			"missing_headings", issue.MissingHeadings,
		)
	}
	if len(issues) == 0 {
		slog.Info("Knowledge base audit passed", "files", len(required))
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
