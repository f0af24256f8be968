package rag

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jucity-ai/internal/intent"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeKBFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func testCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeKBFile(t, root, "core/contacts.md", "# Контакты\n\nГорячая линия: +7 (831) 213-50-50")
	writeKBFile(t, root, "tickets/prices.md", "# Цены\n\nПонедельник: 990 ₽")
	writeKBFile(t, root, "tickets/free_entry.md", "# Бесплатный вход\n\nВзрослые 18+ бесплатно")
	writeKBFile(t, root, "core/hours.md", "# Режим\n\nПн 12:00–22:00")
	return root
}

func newTestAssembler(t *testing.T, root string) *Assembler {
	t.Helper()
	direct := NewDirectBuilder(root, DefaultTopicFiles())
	return NewAssembler(root, "core/contacts.md", direct)
}

func TestAssembler_Assemble_EnoughCandidates(t *testing.T) {
	root := testCorpus(t)
	a := newTestAssembler(t, root)

	candidates := []SearchCandidate{
		{FilePath: "tickets/prices.md", ChunkID: "p0", Text: "цены", VectorScore: 0.9},
		{FilePath: "core/hours.md", ChunkID: "h0", Text: "режим", VectorScore: 0.8},
	}

	chunks, ok := a.Assemble(context.Background(), candidates, intent.General)
	if !ok {
		t.Fatal("expected assembled context")
	}
	// Candidates plus the appended contacts document.
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[2].FilePath != "core/contacts.md" {
		t.Errorf("contacts document not appended: %+v", chunks)
	}
}

func TestAssembler_Assemble_DedupesAndKeepsSingleContacts(t *testing.T) {
	root := testCorpus(t)
	a := newTestAssembler(t, root)

	candidates := []SearchCandidate{
		{FilePath: "tickets/prices.md", ChunkID: "p0", Text: "цены день", VectorScore: 0.9},
		{FilePath: "tickets/prices.md", ChunkID: "p1", Text: "цены вечер", VectorScore: 0.85},
		{FilePath: "core/contacts.md", ChunkID: "c0", Text: "телефон", VectorScore: 0.8},
	}

	chunks, ok := a.Assemble(context.Background(), candidates, intent.General)
	if !ok {
		t.Fatal("expected assembled context")
	}
	seen := map[string]int{}
	for _, c := range chunks {
		seen[c.FilePath]++
	}
	for path, n := range seen {
		if n > 1 {
			t.Errorf("file %s appears %d times", path, n)
		}
	}
	if seen["core/contacts.md"] != 1 {
		t.Error("contacts document missing")
	}
}

func TestAssembler_Assemble_IntentFallback(t *testing.T) {
	root := testCorpus(t)
	a := newTestAssembler(t, root)

	// One thin candidate and a prices intent: the fixed file list replaces it.
	candidates := []SearchCandidate{
		{FilePath: "core/hours.md", ChunkID: "h0", Text: "режим", VectorScore: 0.4},
	}

	chunks, ok := a.Assemble(context.Background(), candidates, intent.Prices)
	if !ok {
		t.Fatal("expected assembled context")
	}

	paths := make([]string, len(chunks))
	for i, c := range chunks {
		paths[i] = c.FilePath
	}
	want := []string{"tickets/prices.md", "tickets/free_entry.md", "core/contacts.md"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
	if chunks[0].Heading != FullFileHeading {
		t.Errorf("fallback chunk heading = %q, want %q", chunks[0].Heading, FullFileHeading)
	}
}

func TestAssembler_Assemble_BestRawCandidate(t *testing.T) {
	root := testCorpus(t)
	a := newTestAssembler(t, root)

	// General intent has no fallback files, so the single raw candidate is used.
	candidates := []SearchCandidate{
		{FilePath: "core/hours.md", ChunkID: "h0", Text: "режим", VectorScore: 0.4},
	}

	chunks, ok := a.Assemble(context.Background(), candidates, intent.General)
	if !ok {
		t.Fatal("expected assembled context")
	}
	if chunks[0].FilePath != "core/hours.md" {
		t.Errorf("best raw candidate not used: %+v", chunks)
	}
	if chunks[len(chunks)-1].FilePath != "core/contacts.md" {
		t.Error("contacts document not appended")
	}
}

func TestAssembler_Assemble_NothingAvailable(t *testing.T) {
	root := testCorpus(t)
	a := newTestAssembler(t, root)

	if _, ok := a.Assemble(context.Background(), nil, intent.General); ok {
		t.Fatal("expected terminal fallback signal")
	}
}

func TestAssembler_TerminalFallback(t *testing.T) {
	root := testCorpus(t)
	a := newTestAssembler(t, root)

	answer, chunks := a.TerminalFallback(context.Background())
	if !strings.Contains(answer, "+7 (831) 213-50-50") {
		t.Errorf("fallback answer lacks the park phone: %q", answer)
	}
	if !strings.Contains(answer, "Горячая линия") {
		t.Errorf("fallback answer lacks the contacts document content: %q", answer)
	}
	if len(chunks) != 1 || chunks[0].FilePath != "core/contacts.md" {
		t.Errorf("fallback sources = %+v, want single contacts chunk", chunks)
	}
}

func TestDirectBuilder_Build(t *testing.T) {
	root := testCorpus(t)
	direct := NewDirectBuilder(root, DefaultTopicFiles())

	chunks, err := direct.Build(context.Background(), intent.Prices)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].ChunkID != "tickets/prices.md::full" {
		t.Errorf("unexpected chunk id: %s", chunks[0].ChunkID)
	}
}

func TestDirectBuilder_Build_SkipsMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeKBFile(t, root, "tickets/prices.md", "# Цены")
	direct := NewDirectBuilder(root, DefaultTopicFiles())

	chunks, err := direct.Build(context.Background(), intent.Prices)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].FilePath != "tickets/prices.md" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestDirectBuilder_Build_AllMissing(t *testing.T) {
	direct := NewDirectBuilder(t.TempDir(), DefaultTopicFiles())

	if _, err := direct.Build(context.Background(), intent.Prices); err == nil {
		t.Fatal("expected error when no configured file is readable")
	}
}

func TestDirectBuilder_PrimaryFile(t *testing.T) {
	direct := NewDirectBuilder(t.TempDir(), DefaultTopicFiles())

	if got := direct.PrimaryFile(intent.Prices); got != "tickets/prices.md" {
		t.Errorf("PrimaryFile(prices) = %q", got)
	}
	if got := direct.PrimaryFile(intent.General); got != "" {
		t.Errorf("PrimaryFile(general) = %q, want empty", got)
	}
}
