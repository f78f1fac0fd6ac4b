package pronoun

import (
	"strings"
	"unicode/utf8"

	"pronounfix/pkg/glossary"
)

const (
	// AttributionThreshold is the minimum score for a span to belong to a character.
	AttributionThreshold = 300

	nameHit        = 1000
	nameLengthCap  = 220
	aliasHit       = 300
	aliasLengthCap = 140
	primaryBonus   = 250
)

// Score rates how strongly text belongs to c. Name and alias hits are literal,
// case-sensitive substring counts; longer terms are worth more per hit.
func Score(text string, c glossary.Character, primary bool) int {
	score := 0
	if c.Name != "" {
		n := strings.Count(text, c.Name)
		score += n * (nameHit + min(nameLengthCap, utf8.RuneCountInString(c.Name)*6))
	}
	for _, a := range c.Aliases {
		if a == "" {
			continue
		}
		n := strings.Count(text, a)
		score += n * (aliasHit + min(aliasLengthCap, utf8.RuneCountInString(a)*5))
	}
	if primary && score > 0 {
		score += primaryBonus
	}
	return score
}

// Attribute returns the character text most strongly belongs to. Ties go to
// the character listed first in the glossary.
func (f *Fixer) Attribute(text string) (glossary.Character, bool) {
	var (
		best      glossary.Character
		bestScore int
	)
	for _, c := range f.view.Characters {
		if s := Score(text, c, f.view.IsPrimary(c)); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < AttributionThreshold {
		return glossary.Character{}, false
	}
	return best, true
}
