package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks jucity-ai/internal/service Generator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks jucity-ai/internal/service Retriever

import (
	"context"
	"log/slog"
	"strings"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/intent"
	"jucity-ai/internal/rag"
	"jucity-ai/internal/session"
)

// DegradedAnswer is returned when a collaborator keeps failing after its
// retry. The caller always receives text.
const DegradedAnswer = "Ой, у меня временно не получается получить информацию 😕\n" +
	"Можно уточнить по телефону парка: +7 (831) 213-50-50\n" +
	"Или попробуйте повторить вопрос через минуту."

// databaseInfoAnswer replies to meta questions about the bot's data source
// without touching the pipeline.
const databaseInfoAnswer = "Я отвечаю по базе знаний парка — это справочная информация (цены, правила, режим, услуги).\n" +
	"Иногда бывает техническая пауза, и тогда я предлагаю телефон ресепшн."

// bookingHintText is the side-channel nudge for booking-flavored questions.
const bookingHintText = "Если хотите, могу сразу дать контакт отдела праздников для брони: +7 962 509-74-93"

// Generator produces the final answer text from a system prompt and a user
// message. Defined from the service layer's perspective (consumer-first).
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Retriever finds scored knowledge-base candidates for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]rag.SearchCandidate, error)
}

// SessionStore is the slice of the session store the pipeline needs.
type SessionStore interface {
	GetContext(ctx context.Context, userID string) (session.Context, error)
	UpdateContext(ctx context.Context, userID string, lastTopic string, history []string) error
	UpsertProfile(ctx context.Context, userID string, patch map[string]any) (map[string]any, error)
}

// AnswerRequest is one inbound question. UserID may be empty for anonymous
// callers, which disables session state.
type AnswerRequest struct {
	UserID   string
	Question string `validate:"required"`
}

// AnswerResponse is the pipeline's result. BookingHint is non-empty when the
// caller should surface the party-booking contact as a follow-up message.
type AnswerResponse struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	Intent      string   `json:"intent"`
	BookingHint string   `json:"booking_hint,omitempty"`
}

// AnswerService runs the full question-answering pipeline: session context,
// intent classification, retrieval or direct context, generation, and output
// post-processing. Collaborator failures never escape it; every request
// produces text.
type AnswerService struct {
	sessions   SessionStore
	classifier *intent.Classifier
	retriever  Retriever
	generator  Generator
	direct     *rag.DirectBuilder
	assembler  *rag.Assembler
	limiter    *BookingHintLimiter
	topK       int
	logger     *slog.Logger
}

// NewAnswerService wires the pipeline. sessions may be nil to disable
// per-conversant state entirely.
func NewAnswerService(
	sessions SessionStore,
	classifier *intent.Classifier,
	retriever Retriever,
	generator Generator,
	direct *rag.DirectBuilder,
	assembler *rag.Assembler,
	limiter *BookingHintLimiter,
	topK int,
) *AnswerService {
	return &AnswerService{
		sessions:   sessions,
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		direct:     direct,
		assembler:  assembler,
		limiter:    limiter,
		topK:       topK,
		logger:     slog.Default(),
	}
}

// Answer processes one question end to end.
func (s *AnswerService) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		logger.WarnContext(ctx, "empty question in answer request")
		return AnswerResponse{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}

	if isDatabaseQuestion(question) {
		return AnswerResponse{Answer: databaseInfoAnswer, Intent: intent.General}, nil
	}

	sc := s.recordTurn(ctx, req.UserID, question)

	contextualized := session.ContextualizeQuestion(question, sc.LastTopic)
	intentTag := s.classifier.Classify(contextualized)
	logger.InfoContext(ctx, "question classified",
		"intent", intentTag, "contextualized", contextualized != question)

	chunks, ok := s.buildContext(ctx, contextualized, intentTag)
	if !ok {
		answer, fallbackChunks := s.assembler.TerminalFallback(ctx)
		resp := AnswerResponse{
			Answer:  stripPartyContact(answer, question, sc.History),
			Sources: sourcePaths(fallbackChunks),
			Intent:  intentTag,
		}
		s.finishTurn(ctx, req.UserID, question, resp.Sources, &resp)
		return resp, nil
	}

	answer, err := s.generator.Generate(ctx, rag.SystemPrompt, rag.BuildUserMessage(contextualized, chunks))
	if err != nil {
		logger.ErrorContext(ctx, "answer generation failed", "error", err)
		return AnswerResponse{Answer: DegradedAnswer, Intent: intentTag}, nil
	}

	if strings.TrimSpace(answer) == "" {
		logger.WarnContext(ctx, "generator returned empty answer, fabricating from context")
		answer = fabricateAnswer(chunks)
	}

	resp := AnswerResponse{
		Answer:  stripPartyContact(rag.PostProcess(answer, intentTag), question, sc.History),
		Sources: sourcePaths(chunks),
		Intent:  intentTag,
	}
	s.finishTurn(ctx, req.UserID, question, resp.Sources, &resp)

	logger.InfoContext(ctx, "answer produced",
		"intent", intentTag, "sources", resp.Sources, "answer_length", len(resp.Answer))
	return resp, nil
}

// recordTurn appends the utterance to history, merges any extracted profile
// patch, and returns the context as it stood before this turn. Session
// failures are logged and degrade to stateless handling.
func (s *AnswerService) recordTurn(ctx context.Context, userID, question string) session.Context {
	if s.sessions == nil || userID == "" {
		return session.Context{}
	}
	logger := contextutil.LoggerFromContext(ctx)

	sc, err := s.sessions.GetContext(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load session context", "error", err)
		return session.Context{}
	}

	history := session.AppendHistory(sc.History, question)
	if err := s.sessions.UpdateContext(ctx, userID, "", history); err != nil {
		logger.ErrorContext(ctx, "failed to persist history", "error", err)
	}

	if patch := session.ExtractProfilePatch(question); len(patch) > 0 {
		if _, err := s.sessions.UpsertProfile(ctx, userID, patch); err != nil {
			logger.ErrorContext(ctx, "failed to merge profile patch", "error", err)
		}
	}

	return sc
}

// finishTurn records the answer's topic from its cited sources and attaches
// the booking hint when the question asks to book and the per-user limiter
// allows it.
func (s *AnswerService) finishTurn(ctx context.Context, userID, question string, sources []string, resp *AnswerResponse) {
	if s.sessions != nil && userID != "" {
		if topic := intent.TopicForSources(sources); topic != "" {
			if err := s.sessions.UpdateContext(ctx, userID, topic, nil); err != nil {
				contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to persist last topic", "error", err)
			}
		}
	}
	if s.limiter != nil && intent.HasBookingTrigger(question) && s.limiter.Allow(userID) {
		resp.BookingHint = bookingHintText
	}
}

// buildContext produces the generator context for an intent: direct files for
// matched topics, retrieval plus rerank otherwise. ok=false means the terminal
// fallback must answer instead of the generator.
func (s *AnswerService) buildContext(ctx context.Context, question, intentTag string) ([]rag.ContextChunk, bool) {
	logger := contextutil.LoggerFromContext(ctx)

	if s.direct != nil && s.direct.HasTopic(intentTag) {
		chunks, err := s.direct.Build(ctx, intentTag)
		if err != nil {
			logger.ErrorContext(ctx, "direct context failed", "intent", intentTag, "error", err)
			return nil, false
		}
		return s.assembler.Complete(ctx, chunks), true
	}

	candidates, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		candidates = nil
	}
	primary := ""
	if s.direct != nil {
		primary = s.direct.PrimaryFile(intentTag)
	}
	candidates = rag.Rerank(candidates, question, primary)
	return s.assembler.Assemble(ctx, candidates, intentTag)
}

func isDatabaseQuestion(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "с какой базой") ||
		strings.Contains(t, "какая база") ||
		strings.Contains(t, "какую базу")
}

// fabricateAnswer builds a short answer from the best context excerpt when the
// generator returns empty text.
func fabricateAnswer(chunks []rag.ContextChunk) string {
	if len(chunks) == 0 {
		return DegradedAnswer
	}
	excerpt := []rune(strings.TrimSpace(chunks[0].Text))
	if len(excerpt) > 400 {
		excerpt = excerpt[:400]
	}
	return "Вот что я нашёл по вашему вопросу:\n\n" + string(excerpt) +
		"\n\nЕсли нужно уточнить, звоните: +7 (831) 213-50-50."
}

func sourcePaths(chunks []rag.ContextChunk) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if seen[c.FilePath] {
			continue
		}
		seen[c.FilePath] = true
		sources = append(sources, c.FilePath)
	}
	return sources
}
