package pronoun

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u2007", " ", // figure space
	"\u2009", " ", // thin space
	"\u200a", " ", // hair space
	"\u202f", " ", // narrow no-break space
)

// NormalizeSpaces turns non-breaking and thin spaces into plain spaces.
func NormalizeSpaces(s string) string {
	return spaceReplacer.Replace(s)
}

// MatchCase reproduces the casing of src on repl: all upper stays all upper,
// a leading capital capitalizes only the first letter, anything else is lower.
func MatchCase(src, repl string) string {
	switch {
	case isUpper(src):
		return strings.ToUpper(repl)
	case startsUpper(src):
		return capitalize(strings.ToLower(repl))
	default:
		return strings.ToLower(repl)
	}
}

func isUpper(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// runeOffset converts a byte offset in s into a character offset.
func runeOffset(s string, byteOff int) int {
	return utf8.RuneCountInString(s[:byteOff])
}
