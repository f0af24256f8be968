// Package intent maps raw visitor questions to a fixed set of topic tags via
// ordered keyword matching. The trigger tables are a behavioural contract:
// table order encodes priority (specific topics before broad ones), so any
// reordering changes classification results and must be covered by tests.
package intent

import (
	"regexp"
	"strings"
)

// Topic tags. General is returned when no trigger matches.
const (
	ParkFacts     = "park_facts"
	Socks         = "socks"
	Attractions   = "attractions"
	Contacts      = "contacts"
	Location      = "location"
	Rules         = "rules"
	Graduation    = "graduation"
	Birthday      = "birthday"
	Hours         = "hours"
	Discounts     = "discounts"
	VR            = "vr"
	Phygital      = "phygital"
	OwnFoodRules  = "own_food_rules"
	TicketsOnline = "tickets_online"
	Prices        = "prices"
	General       = "general"

	// CakeFee is a session-only topic: it is never produced by Classify, only
	// assigned from cited sources after an answer touches the cake-fee document.
	CakeFee = "cake_fee"
)

// Entry binds one topic tag to its trigger substrings.
type Entry struct {
	Topic    string
	Triggers []string
}

// Table is an ordered list of topic entries. The first entry with a matching
// trigger wins.
type Table []Entry

// DefaultTable returns the production trigger table, ordered by priority:
// more specific topics (park facts, sock policy) come before broad ones
// (prices) whose keyword lists would otherwise shadow them.
func DefaultTable() Table {
	return Table{
		{ParkFacts, []string{
			"размер", "площад", "кв", "м²", "метр",
			"сколько аттракцион", "40", "большой парк", "маленький парк",
		}},
		{Socks, []string{
			"носки", "носок", "в носках", "купить носки",
			"без носков", "сменка", "сменная обувь",
		}},
		{Attractions, []string{
			"аттракционы", "что есть", "какие есть",
			"батут", "горки", "карусели", "лабиринт", "развлечения",
		}},
		{Contacts, []string{
			"контакт", "телефон", "позвон", "звон", "email", "почт",
		}},
		{Location, []string{
			"адрес", "как добраться", "где находится", "локаци",
		}},
		{Rules, []string{
			"правил", "запрещен",
		}},
		{Graduation, []string{
			"выпускн",
		}},
		{Birthday, []string{
			"день рождения", "праздник", "банкет", "комната", "анимация",
		}},
		{Hours, []string{
			"1 января", "31 декабря", "до скольки", "режим", "работаете",
		}},
		{Discounts, []string{
			"скидк", "льгот", "овз", "многодет",
		}},
		{VR, []string{
			"vr",
		}},
		{Phygital, []string{
			"фиджитал",
		}},
		{OwnFoodRules, []string{
			"торт", "сладкий",
		}},
		{TicketsOnline, []string{
			"купить билет онлайн", "на сайте купить билет",
			"оплатить на сайте", "онлайн билет", "прям на сайте",
		}},
		// Prices go last: the broadest keyword list of all.
		{Prices, []string{
			"сколько стоит", "цена", "билет",
			"понедельник", "вторник", "сред", "четверг",
			"пятниц", "суббот", "воскрес",
		}},
	}
}

// birthdayAbbrRe matches the two-letter birthday abbreviation "др" as a
// standalone word. Go's \b is ASCII-only, so Cyrillic boundaries are spelled
// out: the abbreviation must not be preceded or followed by a letter or digit
// (keeps "выдра" and similar embeddings from triggering the birthday topic).
var birthdayAbbrRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])др(?:$|[^\p{L}\p{N}])`)

// Classifier maps question text to a topic tag.
type Classifier struct {
	table Table
}

// NewClassifier creates a classifier over the given trigger table.
func NewClassifier(table Table) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the first topic (in table order) with a trigger contained
// in the lower-cased question, or General if nothing matches. Pure function,
// no state.
func (c *Classifier) Classify(question string) string {
	q := strings.ToLower(question)

	if birthdayAbbrRe.MatchString(q) {
		return Birthday
	}

	for _, entry := range c.table {
		for _, trigger := range entry.Triggers {
			if strings.Contains(q, trigger) {
				return entry.Topic
			}
		}
	}

	return General
}
