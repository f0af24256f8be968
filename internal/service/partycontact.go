package service

import (
	"regexp"
	"strings"
)

// partyKeywords mark a question or recent exchange as party-related, which
// keeps the party-department contact in the answer.
var partyKeywords = []string{
	"день рождения",
	"праздник",
	"выпускной",
	"анимация",
	"бронь",
	"комната",
	"банкет",
	"торт",
}

// Standalone "др" shorthand. \b never fires around Cyrillic, so the
// boundaries are explicit.
var drShorthandRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])др(?:$|[^\p{L}\p{N}])`)

// partyContactTriggers open the paragraph that pitches the party department.
var partyContactTriggers = []string{
	"если ты планируешь праздник",
	"лучше всего связаться",
}

const partyContactTail = "Если захотите организовать праздник — скажите, подскажу контакты 😊"

func hasPartyKeywords(texts []string) bool {
	for _, t := range texts {
		low := strings.ToLower(t)
		for _, key := range partyKeywords {
			if strings.Contains(low, key) {
				return true
			}
		}
		if drShorthandRe.MatchString(low) {
			return true
		}
	}
	return false
}

// stripPartyContact removes the party-department pitch from an answer when
// neither the question nor the last two history entries are party-related.
// The pitch paragraph and everything after it are replaced with a short offer
// to share the contact on request.
func stripPartyContact(answer, question string, history []string) string {
	if answer == "" {
		return answer
	}
	lowAnswer := strings.ToLower(answer)
	if !strings.Contains(answer, "+7 962 509 74 93") &&
		!strings.Contains(answer, "+7 962 509-74-93") &&
		!strings.Contains(lowAnswer, "отдел праздников") {
		return answer
	}

	recent := make([]string, 0, 3)
	if len(history) > 2 {
		history = history[len(history)-2:]
	}
	recent = append(recent, history...)
	if question != "" {
		recent = append(recent, question)
	}
	if hasPartyKeywords(recent) {
		return answer
	}

	paragraphs := strings.Split(answer, "\n\n")
	cutIdx := -1
	for i, para := range paragraphs {
		low := strings.ToLower(para)
		for _, trigger := range partyContactTriggers {
			if strings.Contains(low, trigger) {
				cutIdx = i
				break
			}
		}
		if cutIdx >= 0 {
			break
		}
	}
	if cutIdx < 0 {
		return answer
	}

	var kept []string
	for _, para := range paragraphs[:cutIdx] {
		if strings.TrimSpace(para) != "" {
			kept = append(kept, para)
		}
	}
	base := strings.TrimSpace(strings.Join(kept, "\n\n"))
	if base == "" {
		return partyContactTail
	}
	return base + "\n\n" + partyContactTail
}
