package rag

import (
	"fmt"
	"strings"
)

// SystemPrompt is the grounding instruction sent with every generation
// request. Answers must come from the supplied context only.
const SystemPrompt = `Ты — дружелюбный консультант детского парка развлечений «Джунгли Сити» в Нижнем Новгороде.

Отвечай на русском языке, коротко и по делу, тёплым тоном.
Используй ТОЛЬКО информацию из блока «Контекст» ниже. Если в контексте нет ответа на вопрос, честно скажи об этом и предложи уточнить по телефону парка из контекста.
Не выдумывай цены, даты, правила и контакты. Не упоминай, что у тебя есть «контекст» или «база знаний».
Если уместно, в конце предложи помочь с чем-то ещё.`

// BuildContext renders context chunks as the prompt's context block, one
// "[file | heading]" header per chunk.
func BuildContext(chunks []ContextChunk) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		heading := c.Heading
		if heading == "" {
			heading = "—"
		}
		fmt.Fprintf(&b, "[%s | %s]\n%s", c.FilePath, heading, c.Text)
	}
	return b.String()
}

// BuildUserMessage combines the context block and the question into the
// generator's user message.
func BuildUserMessage(question string, chunks []ContextChunk) string {
	return fmt.Sprintf("Контекст:\n%s\n\nВопрос: %s", BuildContext(chunks), question)
}
