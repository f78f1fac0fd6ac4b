package pronoun

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"pronounfix/pkg/glossary"
)

// NearNameWindow is how many characters after a name a pronoun is still taken
// to refer to that name.
const NearNameWindow = 80

// Mention is one occurrence of a character name or alias inside a sentence.
// Position and Length are in characters.
type Mention struct {
	Position int
	Length   int
	Gender   glossary.Gender
}

type mentionTerm struct {
	rx     *regexp.Regexp
	gender glossary.Gender
}

// Fixer holds a glossary view and the name patterns derived from it. It is
// safe for concurrent use once built.
type Fixer struct {
	view  glossary.View
	terms []mentionTerm
}

func NewFixer(view glossary.View) *Fixer {
	f := &Fixer{view: view}
	for _, c := range view.Characters {
		if !c.Gender.Definite() {
			continue
		}
		for _, t := range c.Terms() {
			if t == "" {
				continue
			}
			f.terms = append(f.terms, mentionTerm{
				rx:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t)),
				gender: c.Gender,
			})
		}
	}
	return f
}

func (f *Fixer) View() glossary.View {
	return f.view
}

// Mentions indexes every definite-gender name and alias occurrence in sentence,
// ordered by position.
func (f *Fixer) Mentions(sentence string) []Mention {
	var out []Mention
	for _, t := range f.terms {
		for _, m := range t.rx.FindAllStringIndex(sentence, -1) {
			if !standalone(sentence, m[0], m[1]) {
				continue
			}
			out = append(out, Mention{
				Position: runeOffset(sentence, m[0]),
				Length:   utf8.RuneCountInString(sentence[m[0]:m[1]]),
				Gender:   t.gender,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b Mention) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return out
}

// standalone is a crude word-boundary check around s[start:end].
func standalone(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func genderSet(mentions []Mention) map[glossary.Gender]struct{} {
	set := make(map[glossary.Gender]struct{}, 2)
	for _, m := range mentions {
		set[m.Gender] = struct{}{}
	}
	return set
}

// FixMixed reassigns pronouns in a sentence that mentions characters of
// different genders. The nearest preceding name within NearNameWindow wins
// regardless of the pronoun's grammatical role. Sentences mentioning fewer
// than two genders come back unchanged.
func (f *Fixer) FixMixed(sentence string) string {
	out, _ := f.fixMixed(sentence)
	return out
}

// fixMixed reports whether the sentence qualified for mixed resolution.
func (f *Fixer) fixMixed(sentence string) (string, bool) {
	mentions := f.Mentions(sentence)
	genders := genderSet(mentions)
	if len(genders) < 2 {
		return sentence, false
	}

	var (
		b           strings.Builder
		last        int
		next        int
		prev        *Mention
		lastMention glossary.Gender
		lastTarget  glossary.Gender
		changed     bool
	)
	for _, m := range pronounRX.FindAllStringIndex(sentence, -1) {
		p := runeOffset(sentence, m[0])
		for next < len(mentions) && mentions[next].Position < p {
			prev = &mentions[next]
			lastMention = prev.Gender
			next++
		}

		word := sentence[m[0]:m[1]]
		lower := strings.ToLower(word)
		prior := cmp.Or(lastTarget, lastMention)

		var target glossary.Gender
		switch {
		case prev != nil && p-prev.Position <= NearNameWindow:
			target = prev.Gender
		case objectClass(lower) && len(genders) == 2 && prior.Definite():
			// object forms far from any name point at the other participant
			target = prior.Opposite()
		case prior.Definite():
			target = prior
		default:
			continue
		}
		lastTarget = target

		repl, ok := swapWord(lower, target, adjectival(sentence, m[1]))
		if !ok {
			continue
		}
		b.WriteString(sentence[last:m[0]])
		b.WriteString(MatchCase(word, repl))
		last = m[1]
		changed = true
	}
	if !changed {
		return sentence, true
	}
	b.WriteString(sentence[last:])
	return b.String(), true
}
