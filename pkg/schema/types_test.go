package schema

import "testing"

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"chat":        CategoryChat,
		" Coding ":    CategoryCoding,
		"web_search":  CategoryWebSearch,
		"lightweight": CategoryLightweight,
		"poetry":      CategoryUnknown,
		"":            CategoryUnknown,
	}
	for in, want := range tests {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseIntent(t *testing.T) {
	if got := ParseIntent("RESEARCH"); got != IntentResearch {
		t.Fatalf("expected research, got %s", got)
	}
	if got := ParseIntent("dance"); got != IntentUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
	if !IntentCommandExit.IsCommand() || IntentChat.IsCommand() {
		t.Fatalf("IsCommand misclassified")
	}
}

func TestParseLanguage(t *testing.T) {
	if ParseLanguage("VI") != LanguageVietnamese || ParseLanguage("en") != LanguageEnglish {
		t.Fatalf("known codes not parsed")
	}
	if ParseLanguage("fr") != LanguageOther {
		t.Fatalf("expected other for fr")
	}
}
