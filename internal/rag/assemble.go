package rag

import (
	"context"
	"log/slog"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/kb"
)

// minContextChunks is the smallest candidate set worth handing to the
// generator as-is. Below it the assembler switches to fallback context.
const minContextChunks = 2

// TerminalFallbackAnswer is returned when no context can be assembled at all.
// The generator is never called on this path.
const TerminalFallbackAnswer = "Ой, у меня временно не получается найти информацию по этому вопросу 😕\n" +
	"Лучше уточнить по телефону парка: +7 (831) 213-50-50.\n" +
	"Или попробуйте переформулировать вопрос."

// Assembler turns retrieval candidates into the final generator context,
// falling back to fixed topic files and ultimately the contacts document
// when retrieval confidence is too low.
type Assembler struct {
	root         string
	contactsFile string
	direct       *DirectBuilder
	logger       *slog.Logger
}

// NewAssembler creates an assembler over the corpus root. contactsFile is the
// corpus-relative path to the always-appended contacts document.
func NewAssembler(root, contactsFile string, direct *DirectBuilder) *Assembler {
	return &Assembler{
		root:         root,
		contactsFile: contactsFile,
		direct:       direct,
		logger:       slog.Default(),
	}
}

// Assemble builds the generator context from reranked candidates. When fewer
// than two candidates survive, it substitutes the intent's direct-context
// files, then the single best raw candidate, in that order. It returns
// ok=false only when nothing at all is available; callers must then respond
// with TerminalFallback instead of invoking the generator. The contacts
// document is always appended when not already present, and chunks are
// deduplicated by file path.
func (a *Assembler) Assemble(ctx context.Context, candidates []SearchCandidate, intentTag string) ([]ContextChunk, bool) {
	logger := contextutil.LoggerFromContext(ctx)

	var chunks []ContextChunk
	if len(candidates) >= minContextChunks {
		chunks = candidateChunks(candidates)
	} else {
		if a.direct != nil && a.direct.HasTopic(intentTag) {
			fallback, err := a.direct.Build(ctx, intentTag)
			if err != nil {
				logger.WarnContext(ctx, "intent fallback context unavailable",
					"intent", intentTag, "error", err)
			} else {
				logger.InfoContext(ctx, "using intent fallback context",
					"intent", intentTag, "chunks", len(fallback))
				chunks = fallback
			}
		}
		if len(chunks) == 0 && len(candidates) > 0 {
			logger.InfoContext(ctx, "falling back to best raw candidate",
				"file_path", candidates[0].FilePath, "score", candidates[0].VectorScore)
			chunks = candidateChunks(candidates[:1])
		}
	}

	if len(chunks) == 0 {
		return nil, false
	}
	return a.Complete(ctx, chunks), true
}

// Complete deduplicates chunks by file path and appends the contacts document
// when absent. Direct-context callers use it to apply the same final shaping
// as the retrieval path.
func (a *Assembler) Complete(ctx context.Context, chunks []ContextChunk) []ContextChunk {
	return a.withContacts(ctx, dedupeByFile(chunks))
}

// TerminalFallback returns the canned no-context answer together with the
// contacts document as its sole source.
func (a *Assembler) TerminalFallback(ctx context.Context) (string, []ContextChunk) {
	logger := contextutil.LoggerFromContext(ctx)

	answer := TerminalFallbackAnswer
	text, err := kb.ReadDocument(a.root, a.contactsFile)
	if err != nil {
		logger.ErrorContext(ctx, "contacts document unreadable on terminal fallback",
			"file_path", a.contactsFile, "error", err)
		return answer, nil
	}
	answer = answer + "\n\n" + text
	return answer, []ContextChunk{{
		FilePath: a.contactsFile,
		Heading:  FullFileHeading,
		ChunkID:  a.contactsFile + "::full",
		Text:     text,
	}}
}

func (a *Assembler) withContacts(ctx context.Context, chunks []ContextChunk) []ContextChunk {
	for _, c := range chunks {
		if c.FilePath == a.contactsFile {
			return chunks
		}
	}
	text, err := kb.ReadDocument(a.root, a.contactsFile)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "contacts document unreadable",
			"file_path", a.contactsFile, "error", err)
		return chunks
	}
	return append(chunks, ContextChunk{
		FilePath: a.contactsFile,
		Heading:  FullFileHeading,
		ChunkID:  a.contactsFile + "::full",
		Text:     text,
	})
}

func candidateChunks(candidates []SearchCandidate) []ContextChunk {
	chunks := make([]ContextChunk, 0, len(candidates))
	for _, c := range candidates {
		chunks = append(chunks, ContextChunk{
			FilePath: c.FilePath,
			Heading:  c.Heading,
			ChunkID:  c.ChunkID,
			Text:     c.Text,
		})
	}
	return chunks
}

func dedupeByFile(chunks []ContextChunk) []ContextChunk {
	seen := make(map[string]struct{}, len(chunks))
	out := chunks[:0:0]
	for _, c := range chunks {
		if _, ok := seen[c.FilePath]; ok {
			continue
		}
		seen[c.FilePath] = struct{}{}
		out = append(out, c)
	}
	return out
}
