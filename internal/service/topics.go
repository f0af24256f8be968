package service

import (
	"context"

	"jucity-ai/internal/contextutil"
)

// topicQuestions are the canned questions behind the menu-topic shortcuts.
// Each runs through the normal pipeline and pins last_topic to its topic.
var topicQuestions = map[string]string{
	"prices":     "Сколько стоит билет в будний день и в выходной? Есть ли ограничения по времени?",
	"discounts":  "Какие скидки есть: ОВЗ, многодетные, СВО, 14–18 лет, пенсионеры, после 20:00?",
	"birthday":   "Как проходит день рождения: условия, комнаты, время, что входит, можно ли торт?",
	"graduation": "Как проходят выпускные: условия, программа, длительность, как забронировать?",
	"hours":      "Режим работы парка. Есть ли особые даты (31.12, 01.01)?",
	"location":   "Адрес и как добраться до парка (Нижний Новгород).",
	"rules":      "Какие правила посещения: носки, еда/напитки, возраст, сопровождение?",
	"vr":         "VR входит в билет? Какие условия и где посмотреть цены?",
	"phygital":   "Фиджитал входит в билет? Сколько стоит и как работает?",
	"contacts":   "Контакты парка и отдела праздников.",
	"socks":      "Можно ли у вас купить носки? И можно ли заходить в игровых зонах в обуви?",
}

// TopicQuestion returns the canned question for a menu topic, or "" when the
// topic is unknown.
func TopicQuestion(topic string) string {
	return topicQuestions[topic]
}

// AnswerTopic answers a menu-topic shortcut: it runs the topic's canned
// question through the pipeline and pins the conversant's last topic to the
// selected topic regardless of which sources the answer cites.
func (s *AnswerService) AnswerTopic(ctx context.Context, userID, topic string) (AnswerResponse, error) {
	question := TopicQuestion(topic)
	if question == "" {
		return AnswerResponse{}, ErrUnknownTopic
	}

	resp, err := s.Answer(ctx, AnswerRequest{UserID: userID, Question: question})
	if err != nil {
		return AnswerResponse{}, err
	}

	if s.sessions != nil && userID != "" {
		if err := s.sessions.UpdateContext(ctx, userID, topic, nil); err != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to pin topic", "error", err)
		}
	}
	return resp, nil
}
