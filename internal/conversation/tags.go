package conversation

import "strings"

// tagSynonyms collapses plural and synonym forms of profession names to one
// canonical role tag used by the nearby-search filter.
var tagSynonyms = map[string]string{
	// Medical professionals
	"doctor":     "doctor",
	"doctors":    "doctor",
	"physician":  "doctor",
	"physicians": "doctor",
	"surgeon":    "doctor",
	"surgeons":   "doctor",
	"dentist":    "dentist",
	"dentists":   "dentist",
	"nurse":      "nurse",
	"nurses":     "nurse",

	// Government officials
	"mla":       "mla",
	"mlas":      "mla",
	"mp":        "mp",
	"mps":       "mp",
	"minister":  "minister",
	"ministers": "minister",

	// Other service providers
	"lawyer":     "lawyer",
	"lawyers":    "lawyer",
	"advocate":   "lawyer",
	"advocates":  "lawyer",
	"teacher":    "teacher",
	"teachers":   "teacher",
	"professor":  "professor",
	"professors": "professor",
}

// NormalizeTag maps a role tag to its canonical form. Unknown tags pass
// through lowercased and trimmed, so normalization is idempotent.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if canonical, ok := tagSynonyms[tag]; ok {
		return canonical
	}
	return tag
}
