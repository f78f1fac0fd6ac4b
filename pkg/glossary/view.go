package glossary

import "strings"

// Character is one resolved glossary entry.
type Character struct {
	Name    string   `json:"name"`
	Gender  Gender   `json:"gender"`
	Aliases []string `json:"aliases,omitempty"`
}

// Terms returns the name followed by every alias.
func (c Character) Terms() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// View is the effective glossary for one document. It is read-only once built.
type View struct {
	Key        string
	Characters []Character
	Primary    string
	Force      Gender
	Carry      int
}

// IsPrimary reports whether c is the configured primary character.
func (v View) IsPrimary(c Character) bool {
	return v.Primary != "" && strings.EqualFold(v.Primary, c.Name)
}

// Lookup finds a character by name or alias, ignoring case.
func (v View) Lookup(name string) (Character, bool) {
	name = strings.TrimSpace(name)
	for _, c := range v.Characters {
		for _, t := range c.Terms() {
			if strings.EqualFold(t, name) {
				return c, true
			}
		}
	}
	return Character{}, false
}

// Empty reports whether the view has nothing to attribute text to.
func (v View) Empty() bool {
	return len(v.Characters) == 0
}
