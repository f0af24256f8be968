package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"jucity-ai/internal/handlers"
	"jucity-ai/internal/intent"
	"jucity-ai/internal/rag"
	"jucity-ai/internal/service"
	"jucity-ai/internal/service/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeCorpusFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// newAnswerService builds a real pipeline over a temp corpus with mocked
// retriever and generator, without session state.
func newAnswerService(t *testing.T) (*service.AnswerService, *mocks.MockRetriever, *mocks.MockGenerator) {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	writeCorpusFile(t, root, "core/contacts.md", "# Контакты\n\n+7 (831) 213-50-50")
	writeCorpusFile(t, root, "tickets/prices.md", "# Цены\n\nБудни: 990 ₽")
	writeCorpusFile(t, root, "tickets/free_entry.md", "# Бесплатный вход")
	writeCorpusFile(t, root, "services/vr.md", "# VR\n\nVR-арена")

	retriever := mocks.NewMockRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)
	direct := rag.NewDirectBuilder(root, rag.DefaultTopicFiles())
	assembler := rag.NewAssembler(root, "core/contacts.md", direct)

	svc := service.NewAnswerService(
		nil, intent.NewClassifier(intent.DefaultTable()),
		retriever, generator, direct, assembler, nil, 12,
	)
	return svc, retriever, generator
}

func TestAskHandler(t *testing.T) {
	svc, _, generator := newAnswerService(t)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Будний билет стоит 990 ₽.", nil)

	handler := handlers.NewAskHandler(svc)

	body, _ := json.Marshal(handlers.AskRequest{Question: "Сколько стоит билет?"})
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp handlers.AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Будний билет стоит 990 ₽." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Intent != intent.Prices {
		t.Errorf("Intent = %q, want prices", resp.Intent)
	}
	if len(resp.Sources) == 0 || resp.Sources[0] != "tickets/prices.md" {
		t.Errorf("Sources = %v", resp.Sources)
	}
}

func TestAskHandler_EmptyQuestion(t *testing.T) {
	svc, _, _ := newAnswerService(t)
	handler := handlers.NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"  "}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "question") {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestAskHandler_InvalidBody(t *testing.T) {
	svc, _, _ := newAnswerService(t)
	handler := handlers.NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func topicRequest(t *testing.T, handler http.Handler, topic, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/api/topics/{topic}", handler)

	req := httptest.NewRequest(http.MethodPost, "/api/topics/"+topic, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTopicHandler(t *testing.T) {
	svc, _, generator := newAnswerService(t)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("VR оплачивается отдельно.", nil)

	rec := topicRequest(t, handlers.NewTopicHandler(svc), "vr", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp handlers.AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Intent != intent.VR {
		t.Errorf("Intent = %q, want vr", resp.Intent)
	}
	if !strings.Contains(resp.Answer, rag.VRTicketsURL) {
		t.Errorf("VR answer lacks the tickets link: %q", resp.Answer)
	}
}

func TestTopicHandler_UnknownTopic(t *testing.T) {
	svc, _, _ := newAnswerService(t)

	rec := topicRequest(t, handlers.NewTopicHandler(svc), "weather", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
