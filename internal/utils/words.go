package utils

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reading speed used for estimates, in words per minute.
const wordsPerMinute = 200

// CountWords counts whitespace-separated words. CJK characters count as one word each
// since those scripts do not separate words with spaces.
func CountWords(text string) int {
	n := 0
	for _, field := range strings.Fields(text) {
		cjk := 0
		for _, r := range field {
			if isCJK(r) {
				cjk++
			}
		}
		if cjk == 0 {
			n++
			continue
		}
		n += cjk
		if cjk < utf8.RuneCountInString(field) {
			n++
		}
	}
	return n
}

// ReadingMinutes estimates reading time in whole minutes. Any non-empty text takes at least one minute.
func ReadingMinutes(text string) int {
	words := CountWords(text)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)
}
