package pronoun

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"pronounfix/pkg/glossary"
)

// Block is one text unit of a document, such as a paragraph.
type Block interface {
	Text() string
	SetText(string)
}

// TextBlock is an in-memory Block.
type TextBlock string

func (b *TextBlock) Text() string      { return string(*b) }
func (b *TextBlock) SetText(s string) { *b = TextBlock(s) }

// TextBlocks wraps plain strings as blocks.
func TextBlocks(texts ...string) []Block {
	out := make([]Block, len(texts))
	for i, t := range texts {
		b := TextBlock(t)
		out[i] = &b
	}
	return out
}

// CharacterStatus is the display form of a glossary character.
type CharacterStatus struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

// Change records a block the pass rewrote.
type Change struct {
	Index  int    `json:"index"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Report is the outcome of one pass over a document.
type Report struct {
	ID         string            `json:"id"`
	Key        string            `json:"key,omitempty"`
	Changed    int               `json:"changed"`
	Characters []CharacterStatus `json:"characters"`
	Changes    []Change          `json:"changes,omitempty"`
	Unusable   bool              `json:"unusable,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// Statuses lists the view's characters for display.
func Statuses(view glossary.View) []CharacterStatus {
	out := make([]CharacterStatus, 0, len(view.Characters))
	for _, c := range view.Characters {
		out = append(out, CharacterStatus{Name: c.Name, Gender: c.Gender.String()})
	}
	return out
}

// Unusable reports a pass that could not run because the glossary was missing
// or empty.
func Unusable(view glossary.View, err error) Report {
	rep := Report{
		ID:         ksuid.New().String(),
		Key:        view.Key,
		Characters: Statuses(view),
		Unusable:   true,
	}
	if err != nil {
		rep.Reason = err.Error()
	}
	return rep
}

// Run makes one pass over blocks in document order, rewriting them in place.
// It must not run concurrently with another pass over the same blocks.
func Run(view glossary.View, blocks []Block) Report {
	if view.Empty() {
		return Unusable(view, glossary.ErrGlossaryEmpty)
	}

	rep := Report{
		ID:         ksuid.New().String(),
		Key:        view.Key,
		Characters: Statuses(view),
	}

	f := NewFixer(view)
	var st RunState
	for i, b := range blocks {
		before := b.Text()
		after, next := Process(before, f, st)
		st = next
		if after == before {
			continue
		}
		b.SetText(after)
		rep.Changes = append(rep.Changes, Change{Index: i, Before: before, After: after})
	}
	rep.Changed = st.Changed

	log.Info("pass complete", "id", rep.ID, "key", rep.Key, "blocks", len(blocks), "changed", rep.Changed)
	return rep
}

// IsUnusable reports whether err means a pass cannot run at all.
func IsUnusable(err error) bool {
	return errors.Is(err, glossary.ErrGlossaryUnavailable) || errors.Is(err, glossary.ErrGlossaryEmpty)
}
