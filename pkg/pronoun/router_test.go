package pronoun

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pronounfix/pkg/glossary"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hi there. How are you?  Fine!", []string{"Hi there.", "How are you?", "Fine!"}},
		{"No terminal punctuation", []string{"No terminal punctuation"}},
		{"Wait… what?\nYes.", []string{"Wait…", "what?", "Yes."}},
		{"3.5 metres", []string{"3.5 metres"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestFixBlock(t *testing.T) {
	f := NewFixer(testView(john, mary))

	tests := []struct {
		name string
		in   string
		hint glossary.Gender
		want string
	}{
		{
			"attributed sentence only",
			"Mary lifted his blade. He smiled.",
			glossary.Unknown,
			"Mary lifted her blade. He smiled.",
		},
		{
			"hint fills unattributed sentences",
			"Mary lifted his blade. He smiled.",
			glossary.Female,
			"Mary lifted her blade. She smiled.",
		},
		{
			"sentences routed independently",
			"John drew her sword.  Mary lifted his shield.",
			glossary.Unknown,
			"John drew his sword. Mary lifted her shield.",
		},
		{
			"unchanged block keeps spacing",
			"The wind  howled.   Nobody moved.",
			glossary.Unknown,
			"The wind  howled.   Nobody moved.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FixBlock(tt.in, tt.hint))
		})
	}
}

func TestFixSentenceUnknownGenderWinner(t *testing.T) {
	stranger := glossary.Character{Name: "Stranger"}
	f := NewFixer(testView(stranger))

	// the only match has no gender, so nothing is forced
	assert.Equal(t, "The Stranger lifted his hat.", f.FixSentence("The Stranger lifted his hat.", glossary.Unknown))
	assert.Equal(t, "The Stranger lifted her hat.", f.FixSentence("The Stranger lifted his hat.", glossary.Female))
}

func TestFixSentenceTwoGendersIgnoresGlossaryOrder(t *testing.T) {
	in := "John grabbed her wrist while he smiled at Mary."
	want := "John grabbed his wrist while he smiled at Mary."

	for _, v := range []glossary.View{testView(john, mary), testView(mary, john)} {
		f := NewFixer(v)
		assert.Equal(t, want, f.FixSentence(in, glossary.Unknown))
		assert.Equal(t, want, f.FixSentence(in, glossary.Female))
		assert.Equal(t, want, f.FixBlock(in, glossary.Unknown))
	}
}
