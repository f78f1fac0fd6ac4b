package pronoun

import (
	"regexp"
	"strings"
	"unicode"

	"pronounfix/pkg/glossary"
)

var sentenceEndRX = regexp.MustCompile(`[.!?…]\s+`)

// SplitSentences splits text after sentence-ending punctuation that is followed
// by whitespace. The punctuation stays with the sentence it ends.
func SplitSentences(text string) []string {
	var (
		out  []string
		last int
	)
	for _, m := range sentenceEndRX.FindAllStringIndex(text, -1) {
		cut := m[0] + strings.IndexFunc(text[m[0]:m[1]], unicode.IsSpace)
		if s := strings.TrimSpace(text[last:cut]); s != "" {
			out = append(out, s)
		}
		last = m[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

// FixBlock fixes a block sentence by sentence. A sentence mentioning characters
// of two genders goes to the mixed resolver; otherwise a sentence attributed to
// a definite-gender character gets that gender, and anything else falls back to
// hint when hint is definite.
// Fixed sentences are rejoined with single spaces. A block with nothing to fix
// is returned as is.
func (f *Fixer) FixBlock(text string, hint glossary.Gender) string {
	sentences := SplitSentences(text)
	changed := false
	for i, s := range sentences {
		if out := f.FixSentence(s, hint); out != s {
			sentences[i] = out
			changed = true
		}
	}
	if !changed {
		return text
	}
	return strings.Join(sentences, " ")
}

// FixSentence applies the routing rules of FixBlock to a single sentence.
func (f *Fixer) FixSentence(sentence string, hint glossary.Gender) string {
	// glossary order must not pick a side when both genders are named
	if out, ok := f.fixMixed(sentence); ok {
		return out
	}
	if c, ok := f.Attribute(sentence); ok && c.Gender.Definite() {
		return Replace(sentence, c.Gender)
	}
	if hint.Definite() {
		return Replace(sentence, hint)
	}
	return sentence
}
