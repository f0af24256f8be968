package intent

import "strings"

// topicHints are the keywords that mark a question as already carrying its own
// topic. A follow-up without any of these inherits the previous topic context.
var topicHints = []string{
	"1 января", "31 декабря", "до скольки", "режим", "работаете",
	"скидк", "льгот", "овз", "многодет", "vr", "фиджитал",
	"торт", "сладкий", "купить билет онлайн", "на сайте купить билет",
	"оплатить на сайте", "онлайн билет", "прям на сайте",
	"сколько стоит", "цена", "билет",
	"понедельник", "вторник", "сред", "четверг", "пятниц", "суббот", "воскрес",
	"носки", "носок", "сменка", "сменная обувь",
	"размер", "площад", "кв", "м²", "метр",
	"аттракционы", "что есть", "какие есть", "батут", "горки", "карусели", "лабиринт", "развлечения",
	"адрес", "как добраться", "контакт", "телефон", "правил",
	"выпускн", "день рождения", "праздник", "банкет", "комната", "анимация",
}

// otherTopicTriggers mark a clear pivot to another topic; they suppress the
// cake-fee follow-up rewrite.
var otherTopicTriggers = []string{
	"сколько стоит", "цена", "билет", "скидк", "льгот", "овз", "многодет",
	"режим", "до скольки", "работаете", "адрес", "как добраться",
	"контакт", "vr", "фиджитал",
}

// bookingTriggers mark an explicit booking request.
var bookingTriggers = []string{
	"забронировать", "бронь", "заказать",
	"хочу праздник", "день рождения", "выпускной", "анимация",
}

// contextHints are the carry-over sentences prefixed to ambiguous follow-ups.
var contextHints = map[string]string{
	Prices:        "Контекст: обсуждаем цену билета.",
	Discounts:     "Контекст: обсуждаем скидки и льготы.",
	Hours:         "Контекст: обсуждаем режим работы парка.",
	Location:      "Контекст: обсуждаем адрес и как добраться.",
	Rules:         "Контекст: обсуждаем правила посещения.",
	Birthday:      "Контекст: обсуждаем день рождения в парке.",
	Graduation:    "Контекст: обсуждаем выпускные в парке.",
	VR:            "Контекст: обсуждаем VR в парке.",
	Phygital:      "Контекст: обсуждаем фиджитал в парке.",
	Contacts:      "Контекст: обсуждаем контакты парка.",
	TicketsOnline: "Контекст: обсуждаем покупку билета онлайн.",
	ParkFacts:     "Контекст: обсуждаем размер парка.",
	Attractions:   "Контекст: обсуждаем аттракционы и развлечения.",
	Socks:         "Контекст: обсуждаем правила про носки.",
	OwnFoodRules:  "Контекст: обсуждаем правила про еду и торт.",
	CakeFee:       "Контекст: обсуждаем сладкий сбор за торт на празднике.",
}

// sourceTopics maps cited source documents to the topic recorded as
// last_topic, in priority order: the first cited document wins.
var sourceTopics = []struct {
	FilePath string
	Topic    string
}{
	{"core/park_facts.md", ParkFacts},
	{"rules/socks.md", Socks},
	{"park/attractions_overview.md", Attractions},
	{"core/contacts.md", Contacts},
	{"core/location.md", Location},
	{"rules/visit_rules.md", Rules},
	{"parties/graduation.md", Graduation},
	{"parties/birthday.md", Birthday},
	{"food/own_food_rules.md", CakeFee},
	{"core/hours.md", Hours},
	{"tickets/discounts.md", Discounts},
	{"services/vr.md", VR},
	{"services/phygital.md", Phygital},
	{"tickets/buy_online.md", TicketsOnline},
	{"tickets/prices.md", Prices},
}

// HasTopicHints reports whether the text carries any topic-indicating keyword
// of its own (including the standalone birthday abbreviation).
func HasTopicHints(text string) bool {
	t := strings.ToLower(text)
	if birthdayAbbrRe.MatchString(t) {
		return true
	}
	for _, hint := range topicHints {
		if strings.Contains(t, hint) {
			return true
		}
	}
	return false
}

// HasBookingTrigger reports whether the text reads as a booking request.
func HasBookingTrigger(text string) bool {
	t := strings.ToLower(text)
	for _, trigger := range bookingTriggers {
		if strings.Contains(t, trigger) {
			return true
		}
	}
	return false
}

// ContextHint returns the carry-over sentence for a topic, or "" when the
// topic has no context sentence.
func ContextHint(lastTopic string) string {
	return contextHints[lastTopic]
}

// ShouldContextualizeCakeFee reports whether an ambiguous follow-up should be
// rewritten with the cake-fee context sentence: the previous topic must be
// cake-fee adjacent, the question must reference the fee amount or ask why,
// and the question must not clearly pivot to another topic.
func ShouldContextualizeCakeFee(text, lastTopic string) bool {
	switch lastTopic {
	case CakeFee, Birthday, OwnFoodRules:
	default:
		return false
	}

	t := strings.ToLower(text)
	feeRef := false
	for _, trigger := range []string{"1000", "за что", "почему"} {
		if strings.Contains(t, trigger) {
			feeRef = true
			break
		}
	}
	if !feeRef {
		return false
	}

	for _, trigger := range otherTopicTriggers {
		if strings.Contains(t, trigger) {
			return false
		}
	}
	return true
}

// TopicForSources returns the topic for the highest-priority source document
// cited by an answer, or "" when no source maps to a topic.
func TopicForSources(sources []string) string {
	cited := make(map[string]bool, len(sources))
	for _, s := range sources {
		cited[s] = true
	}
	for _, st := range sourceTopics {
		if cited[st.FilePath] {
			return st.Topic
		}
	}
	return ""
}
