// Package textutil post-processes model responses.
package textutil

import (
	"strings"
	"unicode"
)

// EmptyResponse replaces an empty model response.
const EmptyResponse = "Xin lỗi, tôi không thể tạo phản hồi lúc này."

const (
	minTrimLength = 100
	tailWindow    = 0.7
)

// TrimIfTruncated trims a response that looks cut off mid-sentence back to
// the last sentence end or paragraph break, provided that boundary lies in
// the final 30% of the text. Complete, short or boundary-less texts are
// returned unchanged. Applying it twice gives the same result as once.
func TrimIfTruncated(text string) string {
	if strings.TrimSpace(text) == "" {
		return EmptyResponse
	}
	for {
		next, cut := trimOnce(text)
		if !cut {
			return text
		}
		text = next
	}
}

// IsComplete reports whether text ends with sentence punctuation or a
// closing code fence.
func IsComplete(text string) bool {
	t := strings.TrimRightFunc(text, unicode.IsSpace)
	if t == "" {
		return false
	}
	if strings.HasSuffix(t, "```") {
		return true
	}
	switch t[len(t)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func trimOnce(text string) (string, bool) {
	if IsComplete(text) {
		return text, false
	}
	runes := []rune(text)
	n := len(runes)
	if n <= minTrimLength {
		return text, false
	}

	pos, cut := lastBoundary(runes)
	if pos < 0 || float64(pos) <= float64(n)*tailWindow {
		return text, false
	}

	out := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
	if strings.TrimSpace(out) == "" {
		return text, false
	}
	return out, true
}

// lastBoundary returns the rune index of the latest sentence end or
// paragraph break and the index to cut at, or -1.
func lastBoundary(runes []rune) (pos, cut int) {
	for i := len(runes) - 1; i >= 0; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i, i + 1
		case '\n':
			if i > 0 && runes[i-1] == '\n' {
				return i - 1, i - 1
			}
		}
	}
	return -1, 0
}
