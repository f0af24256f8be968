package kb

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestLoadCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tickets/prices.md", "# Цены\n\nПонедельник: 990 ₽")
	writeFile(t, root, "core/contacts.md", "# Контакты\n\n+7 (831) 213-50-50")
	writeFile(t, root, "core/notes.txt", "not markdown")
	writeFile(t, root, ".obsidian/workspace.md", "editor state")

	docs, err := LoadCorpus(root)
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	// Sorted by path
	if docs[0].FilePath != "core/contacts.md" || docs[1].FilePath != "tickets/prices.md" {
		t.Errorf("unexpected order: %s, %s", docs[0].FilePath, docs[1].FilePath)
	}
	if docs[1].Text == "" {
		t.Error("document text is empty")
	}
}

func TestLoadCorpus_MissingRoot(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestReadDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "core/hours.md", "# Режим\n\nПн 12:00–22:00")

	text, err := ReadDocument(root, "core/hours.md")
	if err != nil {
		t.Fatalf("ReadDocument() error: %v", err)
	}
	if text != "# Режим\n\nПн 12:00–22:00" {
		t.Errorf("unexpected content: %q", text)
	}

	if _, err := ReadDocument(root, "core/missing.md"); err == nil {
		t.Error("expected error for missing document")
	}
}
