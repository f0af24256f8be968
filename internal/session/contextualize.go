package session

import (
	"fmt"

	"jucity-ai/internal/intent"
)

// ContextualizeQuestion rewrites an ambiguous follow-up so intent
// classification and retrieval see the conversation's active topic. A question
// that carries its own topic keywords passes through unchanged, with one
// exception: a cake-fee follow-up ("а почему 1000?") is rewritten whenever the
// previous topic was cake-fee adjacent, unless the question clearly pivots to
// another topic.
func ContextualizeQuestion(question, lastTopic string) string {
	if intent.ShouldContextualizeCakeFee(question, lastTopic) {
		hint := intent.ContextHint(intent.CakeFee)
		return fmt.Sprintf("%s Вопрос: %s", hint, question)
	}
	if lastTopic == "" || intent.HasTopicHints(question) {
		return question
	}
	hint := intent.ContextHint(lastTopic)
	if hint == "" {
		return question
	}
	return fmt.Sprintf("%s Вопрос: %s", hint, question)
}
