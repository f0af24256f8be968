package session

import (
	"regexp"
	"strconv"
	"strings"
)

// Explicit boundary classes because \b only understands ASCII word
// characters and never fires around Cyrillic text. The right boundary keeps
// over-long words from matching on a truncated prefix.
const (
	lb   = `(?:^|[^\p{L}\p{N}])`
	rb   = `(?:$|[^\p{L}\p{N}])`
	word = `([a-zA-Zа-яёА-ЯЁ]{2,20})`
)

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + lb + `меня\s+зовут\s+` + word + rb),
	regexp.MustCompile(`(?i)` + lb + `я\s+` + word + rb),
	regexp.MustCompile(`(?i)` + lb + `это\s+` + word + rb),
}

var nameStopwords = map[string]bool{
	"из": true, "в": true, "на": true, "не": true, "у": true, "за": true,
	"по": true, "что": true, "как": true, "могу": true, "хочу": true,
	"буду": true, "иду": true, "пишу": true, "спрошу": true, "знаю": true,
	"понимаю": true, "просто": true, "тут": true, "здесь": true,
}

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + lb + `реб[её]нк[ау]\s+(\d{1,2})` + rb),
	regexp.MustCompile(`(?i)` + lb + `дочк[ае]\s+(\d{1,2})` + rb),
	regexp.MustCompile(`(?i)` + lb + `сыну\s+(\d{1,2})` + rb),
}

var kidNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + lb + `дочк[ае]\s+` + word + rb),
	regexp.MustCompile(`(?i)` + lb + `сын\s+` + word + rb),
}

var (
	childrenListRe = regexp.MustCompile(`(?i)` + lb + `дети\s*[:\-]\s*([^\n]+)`)
	childNameAgeRe = regexp.MustCompile(`([a-zA-Zа-яёА-ЯЁ]{2,20})\s+(\d{1,2})`)
)

var visitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + lb + `(завтра)` + rb),
	regexp.MustCompile(`(?i)` + lb + `(в\s+субботу)` + rb),
	regexp.MustCompile(`(?i)` + lb + `(31\s*декабря)` + rb),
	regexp.MustCompile(`(?i)` + lb + `(1\s*января)` + rb),
	regexp.MustCompile(`(?i)` + lb + `(на\s+выходных)` + rb),
}

var likesTrampolineRe = regexp.MustCompile(`(?i)` + lb + `батут[\p{L}]*`)

// ExtractProfilePatch scans an utterance for profile facts (conversant name,
// children, planned visit date, preferences) and returns them as a patch
// suitable for DeepMerge. An utterance with no facts yields an empty patch.
func ExtractProfilePatch(text string) map[string]any {
	if text == "" {
		return map[string]any{}
	}

	patch := map[string]any{}
	if name := extractName(text); name != "" {
		patch["name"] = name
	}
	if kids := extractKids(text); len(kids) > 0 {
		patch["kids"] = kids
	}
	if visit := extractVisitDate(text); visit != "" {
		patch["visit_date"] = visit
	}
	if likes := extractLikes(text); len(likes) > 0 {
		patch["preferences"] = map[string]any{"likes": likes}
	}
	return patch
}

func extractName(text string) string {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if nameStopwords[strings.ToLower(candidate)] {
			continue
		}
		return candidate
	}
	return ""
}

func extractKids(text string) []any {
	var kids []any
	seen := map[string]bool{}

	if m := childrenListRe.FindStringSubmatch(text); m != nil {
		for _, pair := range childNameAgeRe.FindAllStringSubmatch(m[1], -1) {
			age, err := strconv.Atoi(pair[2])
			if err != nil {
				continue
			}
			key := strings.ToLower(pair[1]) + "/" + pair[2]
			if seen[key] {
				continue
			}
			seen[key] = true
			kids = append(kids, map[string]any{"name": pair[1], "age": age})
		}
	}

	for _, re := range kidNamePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			key := strings.ToLower(name) + "/"
			if seen[key] {
				continue
			}
			seen[key] = true
			kids = append(kids, map[string]any{"name": name})
		}
	}

	for _, re := range agePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			age, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			key := "/" + m[1]
			if seen[key] {
				continue
			}
			seen[key] = true
			kids = append(kids, map[string]any{"age": age})
		}
	}

	return kids
}

func extractVisitDate(text string) string {
	for _, re := range visitPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractLikes(text string) []any {
	if likesTrampolineRe.MatchString(text) {
		return []any{"батуты"}
	}
	return nil
}
