package kb

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewChunker(t *testing.T) {
	chunker := NewChunker()
	if chunker == nil {
		t.Fatal("NewChunker() returned nil")
	}
}

func TestChunker_Chunk(t *testing.T) {
	tests := []struct {
		name     string
		chunker  *Chunker
		filePath string
		markdown string
		check    func(t *testing.T, chunks []Chunk)
	}{
		{
			name:     "empty document yields no chunks",
			chunker:  NewChunker(),
			filePath: "empty.md",
			markdown: "   \n\n  ",
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) != 0 {
					t.Errorf("expected 0 chunks, got %d", len(chunks))
				}
			},
		},
		{
			name:     "short document yields single chunk",
			chunker:  NewChunker(),
			filePath: "core/hours.md",
			markdown: "# Режим работы\n\nПн 12:00–22:00, вт–вс 10:00–22:00.",
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) != 1 {
					t.Fatalf("expected 1 chunk, got %d", len(chunks))
				}
				if chunks[0].ChunkID != "core/hours.md::chunk::0" {
					t.Errorf("unexpected chunk id: %s", chunks[0].ChunkID)
				}
				if chunks[0].Heading != "Режим работы" {
					t.Errorf("unexpected heading: %q", chunks[0].Heading)
				}
			},
		},
		{
			name:     "long document produces overlapping windows",
			chunker:  NewChunkerWithSize(100, 20),
			filePath: "long.md",
			markdown: strings.Repeat("слово ", 100),
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) < 2 {
					t.Fatalf("expected multiple chunks, got %d", len(chunks))
				}
				for i, c := range chunks {
					if want := fmt.Sprintf("long.md::chunk::%d", i); c.ChunkID != want {
						t.Errorf("chunk %d: id = %s, want %s", i, c.ChunkID, want)
					}
					if size := len([]rune(c.Text)); size > 100 {
						t.Errorf("chunk %d: %d runes exceeds window", i, size)
					}
				}
			},
		},
		{
			name:     "window retreats to newline past sixty percent",
			chunker:  NewChunkerWithSize(100, 20),
			filePath: "retreat.md",
			markdown: strings.Repeat("a", 80) + "\n" + strings.Repeat("b", 80),
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) < 2 {
					t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
				}
				// Newline at rune 80 is past 60% of the 100-rune window, so
				// the first chunk must stop there instead of mid-line.
				if chunks[0].Text != strings.Repeat("a", 80) {
					t.Errorf("first chunk did not retreat to newline: %q", chunks[0].Text)
				}
			},
		},
		{
			name:     "no retreat when newline falls too early",
			chunker:  NewChunkerWithSize(100, 20),
			filePath: "earlynl.md",
			markdown: strings.Repeat("a", 30) + "\n" + strings.Repeat("b", 200),
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) < 2 {
					t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
				}
				// The only newline sits at rune 30, before 60% of the window,
				// so the first window keeps its full size.
				if size := len([]rune(chunks[0].Text)); size != 100 {
					t.Errorf("first chunk = %d runes, want 100", size)
				}
			},
		},
		{
			name:     "headings tag their chunks",
			chunker:  NewChunkerWithSize(60, 10),
			filePath: "headings.md",
			markdown: "# Цены\n\n" + strings.Repeat("x", 70) + "\n\n## Скидки\n\n" + strings.Repeat("y", 70),
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) < 2 {
					t.Fatalf("expected multiple chunks, got %d", len(chunks))
				}
				if chunks[0].Heading != "Цены" {
					t.Errorf("first chunk heading = %q, want %q", chunks[0].Heading, "Цены")
				}
				last := chunks[len(chunks)-1]
				if last.Heading != "Скидки" {
					t.Errorf("last chunk heading = %q, want %q", last.Heading, "Скидки")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := tt.chunker.Chunk(tt.filePath, tt.markdown)
			tt.check(t, chunks)
		})
	}
}

func TestChunker_Chunk_Deterministic(t *testing.T) {
	chunker := NewChunkerWithSize(120, 30)
	markdown := "# Парк\n\n" + strings.Repeat("Джунгли Сити это крытый парк развлечений. ", 30)

	first := chunker.Chunk("park.md", markdown)
	second := chunker.Chunk("park.md", markdown)

	if len(first) == 0 {
		t.Fatal("expected chunks")
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunker_Chunk_CoversWholeDocument(t *testing.T) {
	chunker := NewChunkerWithSize(100, 20)
	markdown := strings.TrimSpace(strings.Repeat("Правила посещения парка. ", 40))

	chunks := chunker.Chunk("rules.md", markdown)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Consecutive windows overlap, so each chunk after the first starts
	// inside the text of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := []rune(chunks[i].Text)
		if len(head) > 10 {
			head = head[:10]
		}
		if !strings.Contains(chunks[i-1].Text, string(head)) {
			t.Errorf("chunk %d does not continue from its predecessor", i)
		}
	}
	lastRunes := []rune(chunks[len(chunks)-1].Text)
	tail := string(lastRunes[len(lastRunes)-10:])
	if !strings.HasSuffix(markdown, tail) {
		t.Error("final chunk does not end at the document end")
	}
}
