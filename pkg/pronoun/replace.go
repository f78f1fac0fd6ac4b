package pronoun

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pronounfix/pkg/glossary"
)

// rule is one step of the replacement cascade. Rules run in order and each only
// sees what earlier rules left of the opposite pronoun family.
type rule struct {
	name string
	rx   *regexp.Regexp
	// word is the submatch index holding the pronoun.
	word int
	// initial forces an upper-case first letter on the replacement.
	initial bool
	// rewrite maps the matched pronoun onto its lower-case replacement.
	rewrite func(s string, m []int, to glossary.Gender) (string, bool)
}

var cascades = map[glossary.Gender][]rule{
	glossary.Male:   buildCascade(glossary.Male, `her`, `she|her|hers|herself`, `she|hers|herself`),
	glossary.Female: buildCascade(glossary.Female, `him|his`, `he|him|his|himself`, `he|him|himself`),
}

func buildCascade(to glossary.Gender, splitSelf, family, general string) []rule {
	reflexive := "himself"
	if to == glossary.Female {
		reflexive = "herself"
	}

	return []rule{
		{
			name: "split reflexive",
			rx:   regexp.MustCompile(`(?i)\b(` + splitSelf + `)[\s\-‐‑]+self\b`),
			word: 1,
			rewrite: func(s string, m []int, _ glossary.Gender) (string, bool) {
				// "her self-esteem" is a possessive before a compound noun
				if r, _ := utf8.DecodeRuneInString(s[m[1]:]); isWordRune(r) || isHyphen(r) {
					return "", false
				}
				return reflexive, true
			},
		},
		{
			name:    "sentence initial",
			rx:      regexp.MustCompile(`(?i)(^|\n+|[.!?…]\s+)(["'“‘(\[]?)(` + family + `)\b`),
			word:    3,
			initial: true,
			rewrite: swapMatch(3),
		},
		{
			name:    "possessive",
			rx:      regexp.MustCompile(`(?i)\b(` + possessiveSource(to) + `)\b`),
			word:    1,
			rewrite: swapMatch(1),
		},
		{
			name:    "general",
			rx:      regexp.MustCompile(`(?i)\b(` + general + `)\b`),
			word:    1,
			rewrite: swapMatch(1),
		},
	}
}

func isHyphen(r rune) bool {
	return r == '-' || r == '\u2010' || r == '\u2011'
}

// possessiveSource is the ambiguous possessive of the opposite family.
func possessiveSource(to glossary.Gender) string {
	if to == glossary.Male {
		return "her"
	}
	return "his"
}

func swapMatch(group int) func(string, []int, glossary.Gender) (string, bool) {
	return func(s string, m []int, to glossary.Gender) (string, bool) {
		start, end := m[2*group], m[2*group+1]
		return swapWord(s[start:end], to, adjectival(s, end))
	}
}

func (r rule) apply(s string, to glossary.Gender) (string, int) {
	matches := r.rx.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s, 0
	}

	var (
		b    strings.Builder
		last int
		n    int
	)
	for _, m := range matches {
		repl, ok := r.rewrite(s, m, to)
		if !ok {
			continue
		}
		// The replaced span runs from the pronoun to the end of the match,
		// which swallows the detached "self" of a split reflexive.
		ws, we := m[2*r.word], m[2*r.word+1]
		repl = MatchCase(s[ws:we], repl)
		if r.initial {
			repl = capitalize(repl)
		}
		b.WriteString(s[last:ws])
		b.WriteString(repl)
		last = m[1]
		n++
	}
	if n == 0 {
		return s, 0
	}
	b.WriteString(s[last:])
	return b.String(), n
}

// Replace rewrites every pronoun of the opposite family into the form for
// gender to, keeping the original casing. Text without anything to rewrite is
// returned unchanged, including its spacing.
func Replace(text string, to glossary.Gender) string {
	out, _ := replace(text, to)
	return out
}

func replace(text string, to glossary.Gender) (string, int) {
	cascade, ok := cascades[to]
	if !ok {
		return text, 0
	}

	s := NormalizeSpaces(text)
	total := 0
	for _, r := range cascade {
		var n int
		s, n = r.apply(s, to)
		total += n
	}
	if total == 0 {
		return text, 0
	}
	return s, total
}
