// Package pronoun rewrites English third-person pronouns so they agree with the
// gender of the character a sentence is about.
package pronoun

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"pronounfix/pkg/glossary"
)

var pronounRX = regexp.MustCompile(`(?i)\b(?:he|she|him|her|his|hers|himself|herself)\b`)

// swaps maps a lower-cased pronoun of the opposite family onto the target
// gender's form. her and his depend on how they are used and are handled by
// swapWord.
var swaps = map[glossary.Gender]map[string]string{
	glossary.Male: {
		"she":     "he",
		"hers":    "his",
		"herself": "himself",
	},
	glossary.Female: {
		"he":      "she",
		"him":     "her",
		"himself": "herself",
	},
}

// swapWord returns the lower-case replacement for word when moving to target.
// ok is false when word already belongs to the target family.
func swapWord(word string, to glossary.Gender, adjectival bool) (string, bool) {
	word = strings.ToLower(word)
	switch {
	case to == glossary.Male && word == "her":
		if adjectival {
			return "his", true
		}
		return "him", true
	case to == glossary.Female && word == "his":
		if adjectival {
			return "her", true
		}
		return "hers", true
	}
	repl, ok := swaps[to][word]
	return repl, ok
}

// objectClass reports whether a lower-cased pronoun is an object or reflexive form.
func objectClass(word string) bool {
	switch word {
	case "him", "her", "himself", "herself":
		return true
	}
	return false
}

// adjectival reports whether the word ending at byte offset end is followed by
// whitespace and then a letter, i.e. it modifies a following noun.
func adjectival(s string, end int) bool {
	rest := s[end:]
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if len(trimmed) == len(rest) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return unicode.IsLetter(r)
}
