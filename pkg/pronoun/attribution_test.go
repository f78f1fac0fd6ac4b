package pronoun

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pronounfix/pkg/glossary"
)

func testView(chars ...glossary.Character) glossary.View {
	return glossary.View{
		Key:        glossary.DefaultKey,
		Characters: chars,
		Carry:      glossary.DefaultCarryParagraphs,
	}
}

var (
	john = glossary.Character{Name: "John", Gender: glossary.Male}
	mary = glossary.Character{Name: "Mary", Gender: glossary.Female}
)

func TestScore(t *testing.T) {
	meg := glossary.Character{Name: "Margaret", Gender: glossary.Female, Aliases: []string{"Meg"}}

	tests := []struct {
		name    string
		text    string
		c       glossary.Character
		primary bool
		want    int
	}{
		{"short alias", "Meg went home.", meg, false, 315},
		{"no occurrence", "Nobody went home.", meg, false, 0},
		{"no occurrence primary", "Nobody went home.", meg, true, 0},
		{"name", "John ran.", john, false, 1024},
		{"name twice", "John ran. John fell.", john, false, 2048},
		{"primary bonus", "John ran.", john, true, 1274},
		{"case sensitive", "john ran.", john, false, 0},
		{"long name capped", "Bartholomew Fitzgerald-Smythe the Third arrived.",
			glossary.Character{Name: "Bartholomew Fitzgerald-Smythe the Third"}, false, 1220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.text, tt.c, tt.primary))
		})
	}
}

func TestAttributeThreshold(t *testing.T) {
	meg := glossary.Character{Name: "Margaret", Gender: glossary.Female, Aliases: []string{"Meg"}}
	f := NewFixer(testView(meg))

	c, ok := f.Attribute("Meg went home.")
	require.True(t, ok)
	assert.Equal(t, "Margaret", c.Name)

	_, ok = f.Attribute("She went home.")
	assert.False(t, ok)
}

func TestAttributeTies(t *testing.T) {
	text := "John and Mary left."

	c, ok := NewFixer(testView(john, mary)).Attribute(text)
	require.True(t, ok)
	assert.Equal(t, "John", c.Name)

	c, ok = NewFixer(testView(mary, john)).Attribute(text)
	require.True(t, ok)
	assert.Equal(t, "Mary", c.Name)

	v := testView(john, mary)
	v.Primary = "mary"
	c, ok = NewFixer(v).Attribute(text)
	require.True(t, ok)
	assert.Equal(t, "Mary", c.Name)
}

func TestAttributeStrongest(t *testing.T) {
	f := NewFixer(testView(john, mary))
	c, ok := f.Attribute("Mary waved. " + strings.Repeat("Mary smiled. ", 2) + "John nodded.")
	require.True(t, ok)
	assert.Equal(t, "Mary", c.Name)
}
