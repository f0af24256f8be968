package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jucity-ai/internal/handlers"
	"jucity-ai/internal/indexer"
	"jucity-ai/internal/service"
	"jucity-ai/internal/session"
	"jucity-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AnswerService   *service.AnswerService
	IndexerPipeline *indexer.Pipeline
	VectorStore     vectorstore.VectorStore
	Collection      string
	Clock           session.Clock
}

// NewRouter creates the API router.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.AnswerService)
	topicHandler := handlers.NewTopicHandler(deps.AnswerService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection, deps.Clock)
	reindexHandler := handlers.NewReindexHandler(deps.IndexerPipeline)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/topics/{topic}", topicHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/reindex", reindexHandler)
	})

	return r
}
