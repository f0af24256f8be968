package kb

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// DefaultChunkSize is the window size in runes. The KB is Russian-language
	// markdown, so sizes are measured in runes, not bytes.
	DefaultChunkSize = 900
	// DefaultOverlap is the number of runes shared between consecutive chunks.
	DefaultOverlap = 150
)

// Chunk is a bounded slice of one source document with positional heading context.
type Chunk struct {
	ChunkID  string // Deterministic: "<file_path>::chunk::<ordinal>"
	FilePath string
	Heading  string // Last heading at or before the chunk start, empty if none
	Text     string
}

// Chunker splits markdown documents into overlapping, heading-tagged chunks.
// Chunking is deterministic: the same input always yields the same chunk
// sequence with the same ids, so re-indexing unchanged content is idempotent.
type Chunker struct {
	parser    goldmark.Markdown
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker with the default window size and overlap.
func NewChunker() *Chunker {
	return NewChunkerWithSize(DefaultChunkSize, DefaultOverlap)
}

// NewChunkerWithSize creates a chunker with an explicit window size and overlap.
func NewChunkerWithSize(chunkSize, overlap int) *Chunker {
	return &Chunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// headingMark records a heading title and the rune offset of its line start.
type headingMark struct {
	offset int
	title  string
}

// Chunk splits a markdown document into chunks. Windows advance by
// chunkSize-overlap runes; a window end that would split mid-paragraph is
// retreated to the nearest preceding newline, unless that newline falls
// before 60% of the window (a mid-paragraph cut beats a degenerate tiny
// chunk). Empty or whitespace-only documents yield no chunks.
func (c *Chunker) Chunk(filePath, markdown string) []Chunk {
	trimmed := strings.TrimSpace(markdown)
	if trimmed == "" {
		return nil
	}

	headings := c.extractHeadings(trimmed)
	runes := []rune(trimmed)

	var chunks []Chunk
	start := 0
	idx := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			nl := -1
			for i := end - 1; i > start; i-- {
				if runes[i] == '\n' {
					nl = i
					break
				}
			}
			if nl > start+(c.chunkSize*6)/10 {
				end = nl
			}
		}

		chunks = append(chunks, Chunk{
			ChunkID:  fmt.Sprintf("%s::chunk::%d", filePath, idx),
			FilePath: filePath,
			Heading:  headingForOffset(headings, start),
			Text:     strings.TrimSpace(string(runes[start:end])),
		})

		if end >= len(runes) {
			break
		}
		start = end - c.overlap
		if start < 0 {
			start = 0
		}
		idx++
	}

	return chunks
}

// extractHeadings parses the document and returns (rune offset, title) pairs
// for every heading, ordered by position.
func (c *Chunker) extractHeadings(markdown string) []headingMark {
	src := []byte(markdown)
	reader := text.NewReader(src)
	doc := c.parser.Parser().Parse(reader)

	var marks []headingMark
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		lines := heading.Lines()
		if lines.Len() == 0 {
			return ast.WalkContinue, nil
		}

		title := extractTextFromNode(heading, src)
		if title == "" {
			return ast.WalkContinue, nil
		}

		// The segment starts after the "#" markers; walk back to the line start
		// so offsets compare correctly against chunk window starts.
		byteOffset := lines.At(0).Start
		for byteOffset > 0 && src[byteOffset-1] != '\n' {
			byteOffset--
		}

		marks = append(marks, headingMark{
			offset: utf8.RuneCount(src[:byteOffset]),
			title:  title,
		})
		return ast.WalkContinue, nil
	})

	return marks
}

// headingForOffset returns the last heading whose line starts at or before the
// given rune offset, or the empty string if the offset precedes every heading.
func headingForOffset(marks []headingMark, offset int) string {
	current := ""
	for _, m := range marks {
		if m.offset > offset {
			break
		}
		current = m.title
	}
	return current
}

// extractTextFromNode extracts plain text content from a node and its children.
func extractTextFromNode(n ast.Node, content []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			segment := v.Segment
			textBuilder.Write(segment.Value(content))
		case *ast.String:
			textBuilder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(textBuilder.String())
}
