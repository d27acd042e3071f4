package conversation

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", LanguageEnglish},
		{"plain english", "find a doctor near me", LanguageEnglish},
		{"marathi sentence", "mala doctor pahije ahe", LanguageMarathi},
		{"marathi question", "tu kuthe ahe ani kay karto", LanguageMarathi},
		{"single incidental keyword", "I want to book an appointment with the doctor tomorrow", LanguageEnglish},
		{"punctuation only", "?!...", LanguageEnglish},
		{"mixed below threshold", "please create a task for the road near ghar", LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text, DefaultLanguageThreshold); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectLanguageThresholdIsTunable(t *testing.T) {
	text := "book appointment with doctor mala pahije"
	// 2 of 6 tokens are Marathi keywords.
	if got := DetectLanguage(text, 0.5); got != LanguageEnglish {
		t.Errorf("high threshold should classify as English, got %s", got)
	}
	if got := DetectLanguage(text, 0.2); got != LanguageMarathi {
		t.Errorf("low threshold should classify as Marathi, got %s", got)
	}
}
