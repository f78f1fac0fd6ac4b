package pronoun

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"pronounfix/pkg/glossary"
)

// carryReach is how far into a block, in characters, a pronoun may appear for
// the block to inherit the previous block's gender.
const carryReach = 160

var (
	sceneBreakRX   = regexp.MustCompile(`^(?:\*{3,}|-{3,}|={3,}|_{3,}|—{3})$`)
	leadPronounRX  = regexp.MustCompile(`(?i)^[\s"'“‘(\[—–-]*(?:he|she|him|her|his|hers|himself|herself)\b`)
	whitespaceDrop = strings.NewReplacer(" ", "", "\t", "", "\u00a0", "")
)

// RunState is the block-to-block state of one pass over a document.
type RunState struct {
	LastGender glossary.Gender
	CarryLeft  int
	Changed    int
}

// Reset forgets the carried gender. Changed is a pass total and survives.
func (s *RunState) Reset() {
	s.LastGender = glossary.Unknown
	s.CarryLeft = 0
}

// IsSceneBreak reports whether a block is a separator such as "***", "---",
// "* * *" or "— — —".
func IsSceneBreak(text string) bool {
	t := whitespaceDrop.Replace(strings.TrimSpace(text))
	return sceneBreakRX.MatchString(t)
}

// pronounNearStart reports whether text opens with a pronoun or has one within
// its first carryReach characters.
func pronounNearStart(text string) bool {
	if leadPronounRX.MatchString(text) {
		return true
	}
	loc := pronounRX.FindStringIndex(text)
	return loc != nil && runeOffset(text, loc[0]) < carryReach
}

// Process fixes one block and advances the pass state. Blocks are expected in
// document order.
//
// A block attributed to a character fixes with that character's gender and
// opens a carry window of view.Carry blocks. An unattributed block that starts
// with, or soon reaches, a pronoun while the window is open is fixed with the
// carried gender and uses up one block of the window. Scene breaks close the
// window.
func Process(text string, f *Fixer, st RunState) (string, RunState) {
	if IsSceneBreak(text) {
		st.Reset()
		log.Debug("scene break", "block", preview(text))
		return text, st
	}

	view := f.View()
	var out string
	switch c, ok := f.Attribute(text); {
	case view.Force.Definite():
		out = Replace(text, view.Force)
	case ok && c.Gender.Definite():
		out = f.FixBlock(text, c.Gender)
		st.LastGender = c.Gender
		st.CarryLeft = view.Carry
		log.Debug("block attributed", "character", c.Name, "gender", c.Gender, "carry", st.CarryLeft)
	case st.CarryLeft > 0 && st.LastGender.Definite() && pronounNearStart(text):
		out = f.FixBlock(text, st.LastGender)
		st.CarryLeft--
		log.Debug("block carried", "gender", st.LastGender, "left", st.CarryLeft)
	default:
		out = f.FixBlock(text, glossary.Unknown)
	}

	if out != text {
		st.Changed++
	}
	return out, st
}

func preview(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return s
}
