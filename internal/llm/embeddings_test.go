package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func embeddingsServer(t *testing.T, size int) (*httptest.Server, *[]int) {
	t.Helper()
	var batchSizes []int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		batchSizes = append(batchSizes, len(req.Input))

		// Return embeddings out of order: the client must sort by index. The
		// first vector component encodes the input index for order checks.
		data := make([]EmbeddingData, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, size)
			vec[0] = float64(i)
			data[len(req.Input)-1-i] = EmbeddingData{Index: i, Embedding: vec}
		}
		json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
	}))
	t.Cleanup(srv.Close)
	return srv, &batchSizes
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	srv, _ := embeddingsServer(t, 4)
	client := NewEmbeddingsClient(srv.URL, "key", "model", 4)

	vectors, err := client.EmbedTexts(context.Background(), []string{"один", "два", "три"})
	if err != nil {
		t.Fatalf("EmbedTexts() error: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 4 {
			t.Errorf("vector %d has size %d", i, len(vec))
		}
		if vec[0] != float32(i) {
			t.Errorf("vector %d out of order: first component %v", i, vec[0])
		}
	}
}

func TestEmbeddingsClient_EmbedTexts_Batches(t *testing.T) {
	srv, batches := embeddingsServer(t, 2)
	client := NewEmbeddingsClient(srv.URL, "key", "model", 2)

	texts := make([]string, embedBatchSize+5)
	for i := range texts {
		texts[i] = fmt.Sprintf("текст %d", i)
	}

	vectors, err := client.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedTexts() error: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	if len(*batches) != 2 || (*batches)[0] != embedBatchSize || (*batches)[1] != 5 {
		t.Errorf("batch sizes = %v", *batches)
	}
}

func TestEmbeddingsClient_EmbedTexts_EmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://unused", "key", "model", 4)

	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestEmbeddingsClient_EmbedTexts_BlankTextNormalized(t *testing.T) {
	var gotInput []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotInput = req.Input
		data := make([]EmbeddingData, len(req.Input))
		for i := range req.Input {
			data[i] = EmbeddingData{Index: i, Embedding: make([]float64, 3)}
		}
		json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
	}))
	t.Cleanup(srv.Close)

	client := NewEmbeddingsClient(srv.URL, "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"текст", "   "}); err != nil {
		t.Fatalf("EmbedTexts() error: %v", err)
	}
	if len(gotInput) != 2 || gotInput[1] != " " {
		t.Errorf("input = %q, want blank text replaced with a space", gotInput)
	}
}

func TestEmbeddingsClient_EmbedTexts_SizeMismatch(t *testing.T) {
	srv, _ := embeddingsServer(t, 8)
	client := NewEmbeddingsClient(srv.URL, "key", "model", 4)

	_, err := client.EmbedTexts(context.Background(), []string{"текст"})
	if err == nil {
		t.Fatal("expected size validation error")
	}
	if !strings.Contains(err.Error(), "size 8, expected 4") {
		t.Errorf("error = %v", err)
	}
}

func TestEmbeddingsClient_EmbedTexts_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(EmbeddingsResponse{})
	}))
	t.Cleanup(srv.Close)

	client := NewEmbeddingsClient(srv.URL, "key", "model", 4)
	if _, err := client.EmbedTexts(context.Background(), []string{"текст"}); err == nil {
		t.Fatal("expected count validation error")
	}
}
