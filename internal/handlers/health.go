package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/session"
	"jucity-ai/internal/vectorstore"
)

// healthCacheTTL bounds how often the vector store is actually probed.
const healthCacheTTL = 60 * time.Second

// HealthHandler reports vector store reachability with a short-lived cache so
// frequent polling never hammers Qdrant.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	collectionName     string
	healthCheckTimeout time.Duration
	clock              session.Clock

	mu        sync.Mutex
	cachedOK  bool
	checkedAt time.Time
}

// NewHealthHandler creates a new HealthHandler on the given clock.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collectionName string, clock session.Clock) *HealthHandler {
	if clock == nil {
		clock = session.SystemClock{}
	}
	return &HealthHandler{
		vectorStore:        vectorStore,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
		clock:              clock,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ok := h.vectorStoreOK(ctx)

	checks := map[string]string{"vector_store": "ok"}
	var issues []string
	status := "healthy"
	httpStatus := http.StatusOK
	if !ok {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

// vectorStoreOK returns the cached probe result while it is fresh, otherwise
// probes the vector store and refreshes the cache.
func (h *HealthHandler) vectorStoreOK(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	if !h.checkedAt.IsZero() && now.Sub(h.checkedAt) < healthCacheTTL {
		return h.cachedOK
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	ok := true
	exists, err := h.vectorStore.CollectionExists(checkCtx, h.collectionName)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "vector store health check failed", "error", err)
		ok = false
	} else if !exists {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "vector store collection does not exist",
			"collection", h.collectionName)
		ok = false
	}

	h.cachedOK = ok
	h.checkedAt = now
	return ok
}
