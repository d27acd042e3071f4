package conversation

import (
	"regexp"
	"strings"
)

// Supported response languages.
const (
	LanguageEnglish = "en"
	LanguageMarathi = "mr"
)

// DefaultLanguageThreshold is the keyword fraction above which text is
// classified as Marathi. Tunable policy, not a contract.
const DefaultLanguageThreshold = 0.3

// marathiKeywords covers common romanized Marathi function words. The list is
// intentionally short-word heavy; the fraction threshold keeps incidental
// English matches ("to", "ho") from flipping the classification.
var marathiKeywords = map[string]struct{}{}

func init() {
	words := []string{
		"mi", "tu", "to", "te", "ho", "nahi", "kay", "ka", "kon", "kase",
		"kuthe", "kevha", "kiti", "ahe", "aahe", "hot", "hoti", "ahet",
		"mala", "tula", "tyala", "amhala", "tumhala", "tyanna", "pahije",
		"aai", "baba", "mulga", "mulgi", "ghar", "kam", "karnar", "karto",
		"karte", "kartoy", "kartos", "kartat", "kuth", "kich", "pan",
		"tar", "pudhe", "mule", "ithe", "thodi", "vel", "jau", "yeu", "ja",
		"ye", "gelo", "gela", "geli", "alo", "ali", "yet", "nako", "nka",
		"mhanun", "ki", "ani",
	}
	for _, w := range words {
		marathiKeywords[w] = struct{}{}
	}
}

var wordPattern = regexp.MustCompile(`\w+`)

// DetectLanguage classifies text as English or romanized Marathi by the
// fraction of tokens found in the Marathi keyword set. Empty input falls back
// to English. The classification selects response templates only; it never
// affects backend call behavior.
func DetectLanguage(text string, threshold float64) string {
	if threshold <= 0 {
		threshold = DefaultLanguageThreshold
	}
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return LanguageEnglish
	}

	matches := 0
	for _, w := range words {
		if _, ok := marathiKeywords[w]; ok {
			matches++
		}
	}
	if float64(matches)/float64(len(words)) > threshold {
		return LanguageMarathi
	}
	return LanguageEnglish
}
