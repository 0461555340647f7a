package router

import (
	"strings"
	"unicode/utf8"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

const vietnameseLetters = "àáảãạăắằẳẵặâấầẩẫậèéẻẽẹêếềểễệìíỉĩịòóỏõọôốồổỗộơớờởỡợùúủũụưứừửữựỳýỷỹỵđ"

var englishStopwords = map[string]struct{}{
	"the": {}, "and": {}, "you": {}, "that": {}, "have": {}, "for": {}, "with": {}, "this": {},
}

const (
	languageSampleWords = 10
	englishRatio        = 0.3
)

// DetectLanguage guesses the language of text, preferring Vietnamese.
// Any Vietnamese diacritic decides vi. Otherwise the text is English when
// more than 30% of the sampled words longer than two letters are common
// English stopwords. Empty and undecided text is Vietnamese.
func DetectLanguage(text string) schema.Language {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return schema.LanguageVietnamese
	}
	if strings.ContainsAny(lower, vietnameseLetters) {
		return schema.LanguageVietnamese
	}

	words := strings.Fields(lower)
	if len(words) > languageSampleWords {
		words = words[:languageSampleWords]
	}

	counted, english := 0, 0
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		counted++
		if _, ok := englishStopwords[w]; ok {
			english++
		}
	}

	if counted > 0 && float64(english)/float64(counted) > englishRatio {
		return schema.LanguageEnglish
	}
	return schema.LanguageVietnamese
}
