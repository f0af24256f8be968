package rag

import (
	"regexp"
	"strings"

	"jucity-ai/internal/intent"
)

// VRTicketsURL is appended to VR answers that cite no link of their own.
const VRTicketsURL = "https://nn.jucity.ru/tickets-vr/"

// Matches +7 numbers regardless of spacing and punctuation between groups,
// capturing the 3-3-2-2 digit groups.
var phoneRe = regexp.MustCompile(`\+7[\s()\-]*(\d{3})[\s()\-]*(\d{3})[\s()\-]*(\d{2})[\s()\-]*(\d{2})`)

// NormalizePhones rewrites every Russian phone number in text to the
// canonical "+7 XXX XXX-XX-XX" form.
func NormalizePhones(text string) string {
	return phoneRe.ReplaceAllString(text, "+7 $1 $2-$3-$4")
}

// PostProcess applies the output fixups common to every generated answer:
// phone normalization, and for VR questions a tickets link when the model
// produced none.
func PostProcess(answer, intentTag string) string {
	out := NormalizePhones(answer)
	if intentTag == intent.VR && !strings.Contains(out, "http") {
		out = strings.TrimRight(out, "\n ") + "\n\nЦены и билеты: " + VRTicketsURL
	}
	return out
}
