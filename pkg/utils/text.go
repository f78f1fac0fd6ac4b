package utils

import (
	"unicode"
)

// TokenizeWords splits s into alternating runs of words, whitespace and
// punctuation. Joining the result gives back s.
func TokenizeWords(s string) []string {
	var out []string
	var cur []rune
	kind := -1 // 0=space,1=word,2=punct
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}
	for _, r := range s {
		k := 2
		switch {
		case unicode.IsSpace(r):
			k = 0
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '\'':
			k = 1
		}
		if kind == -1 {
			kind = k
		}
		if k != kind {
			flush()
			kind = k
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
