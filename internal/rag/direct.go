package rag

import (
	"context"
	"fmt"
	"log/slog"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/intent"
	"jucity-ai/internal/kb"
)

// FullFileHeading marks a context chunk that spans a whole source document.
const FullFileHeading = "FULLFILE"

// DefaultTopicFiles maps each non-general intent to the ordered list of
// documents loaded whole as its direct context. The first entry is the
// intent's primary file, used as the reranking bonus signal.
func DefaultTopicFiles() map[string][]string {
	return map[string][]string{
		intent.Prices:        {"tickets/prices.md", "tickets/free_entry.md", "core/contacts.md"},
		intent.Discounts:     {"tickets/discounts.md", "tickets/prices.md"},
		intent.Hours:         {"core/hours.md"},
		intent.Location:      {"core/location.md", "core/contacts.md"},
		intent.Rules:         {"rules/visit_rules.md", "rules/socks.md"},
		intent.Socks:         {"rules/socks.md", "rules/visit_rules.md"},
		intent.Birthday:      {"parties/birthday.md", "food/own_food_rules.md", "core/contacts.md"},
		intent.Graduation:    {"parties/graduation.md", "core/contacts.md"},
		intent.VR:            {"services/vr.md"},
		intent.Phygital:      {"services/phygital.md"},
		intent.Contacts:      {"core/contacts.md"},
		intent.TicketsOnline: {"tickets/buy_online.md", "tickets/prices.md"},
		intent.ParkFacts:     {"core/park_facts.md", "park/attractions_overview.md"},
		intent.Attractions:   {"park/attractions_overview.md"},
		intent.OwnFoodRules:  {"food/own_food_rules.md", "parties/birthday.md"},
	}
}

// DirectBuilder loads fixed, whole-document context for matched intents,
// bypassing vector search so topic answers stay deterministic.
type DirectBuilder struct {
	root       string
	topicFiles map[string][]string
	logger     *slog.Logger
}

// NewDirectBuilder creates a direct-context builder over the corpus root.
func NewDirectBuilder(root string, topicFiles map[string][]string) *DirectBuilder {
	return &DirectBuilder{
		root:       root,
		topicFiles: topicFiles,
		logger:     slog.Default(),
	}
}

// PrimaryFile returns the canonical document for an intent, or "" when the
// intent has no direct-context files.
func (b *DirectBuilder) PrimaryFile(intentTag string) string {
	files := b.topicFiles[intentTag]
	if len(files) == 0 {
		return ""
	}
	return files[0]
}

// HasTopic reports whether the intent has a direct-context file list.
func (b *DirectBuilder) HasTopic(intentTag string) bool {
	return len(b.topicFiles[intentTag]) > 0
}

// Build reads the intent's file list in order and wraps each readable file as
// a whole-document context chunk. Missing files are skipped with a warning;
// an intent whose list yields zero readable files is a configuration error
// and fails the request rather than silently degrading to vector search.
func (b *DirectBuilder) Build(ctx context.Context, intentTag string) ([]ContextChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files := b.topicFiles[intentTag]
	if len(files) == 0 {
		return nil, fmt.Errorf("no direct-context files configured for intent %q", intentTag)
	}

	chunks := make([]ContextChunk, 0, len(files))
	for _, filePath := range files {
		text, err := kb.ReadDocument(b.root, filePath)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable direct-context file",
				"intent", intentTag, "file_path", filePath, "error", err)
			continue
		}
		chunks = append(chunks, ContextChunk{
			FilePath: filePath,
			Heading:  FullFileHeading,
			ChunkID:  filePath + "::full",
			Text:     text,
		})
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("direct context for intent %q: none of %d configured files are readable", intentTag, len(files))
	}
	return chunks, nil
}
