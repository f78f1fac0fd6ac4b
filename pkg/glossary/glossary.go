package glossary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultKey names the site config every glossary must carry. It is merged
// under whichever site key matches the document URL.
const DefaultKey = "default"

const (
	DefaultCarryParagraphs = 2
	MaxCarryParagraphs     = 5
)

var (
	ErrGlossaryUnavailable = errors.New("glossary unavailable")
	ErrGlossaryEmpty       = errors.New("glossary has no characters")
)

// Entry is a character as written in the glossary document; the name is the
// key it is stored under.
type Entry struct {
	Gender  Gender   `json:"gender"`
	Aliases []string `json:"aliases"`
}

// SiteConfig is the per-site block of a glossary document.
type SiteConfig struct {
	Characters       *orderedmap.OrderedMap[string, Entry] `json:"characters"`
	Mode             string                                `json:"mode,omitempty"`
	PrimaryCharacter string                                `json:"primaryCharacter,omitempty"`
	ForceGender      Gender                                `json:"forceGender,omitempty"`
	CarryParagraphs  *int                                  `json:"carryParagraphs,omitempty"`
}

// Document is a parsed glossary. Site keys and characters keep the order they
// were written in, which decides attribution ties.
type Document struct {
	sites *orderedmap.OrderedMap[string, SiteConfig]
}

// Parse decodes a glossary document. A document without a default key is
// rejected.
func Parse(data []byte) (*Document, error) {
	sites := orderedmap.New[string, SiteConfig]()
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(sites); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGlossaryUnavailable, err)
	}
	if _, ok := sites.Get(DefaultKey); !ok {
		return nil, fmt.Errorf("%w: missing %q key", ErrGlossaryUnavailable, DefaultKey)
	}
	return &Document{sites: sites}, nil
}

// Keys returns the site keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.sites.Len())
	for pair := d.sites.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MatchKey picks the longest site key, other than default, contained in url.
// Earlier keys win ties. Falls back to DefaultKey.
func (d *Document) MatchKey(url string) string {
	best := DefaultKey
	bestLen := 0
	for pair := d.sites.Oldest(); pair != nil; pair = pair.Next() {
		k := pair.Key
		if k == DefaultKey || k == "" {
			continue
		}
		if len(k) > bestLen && strings.Contains(url, k) {
			best, bestLen = k, len(k)
		}
	}
	return best
}

// Resolve builds the effective view for a document URL: the default config
// with the matched site config merged over it.
func (d *Document) Resolve(url string) View {
	key := d.MatchKey(url)
	base, _ := d.sites.Get(DefaultKey)

	merged := orderedmap.New[string, Entry]()
	copyEntries(merged, base.Characters)

	v := View{
		Key:     key,
		Primary: strings.TrimSpace(base.PrimaryCharacter),
		Force:   base.ForceGender,
		Carry:   clampCarry(base.CarryParagraphs),
	}

	if key != DefaultKey {
		site, _ := d.sites.Get(key)
		// Set keeps the position of an existing name and replaces its entry.
		copyEntries(merged, site.Characters)
		if p := strings.TrimSpace(site.PrimaryCharacter); p != "" {
			v.Primary = p
		}
		if site.ForceGender.Definite() {
			v.Force = site.ForceGender
		}
		if site.CarryParagraphs != nil {
			v.Carry = clampCarry(site.CarryParagraphs)
		}
	}

	for pair := merged.Oldest(); pair != nil; pair = pair.Next() {
		name := strings.TrimSpace(pair.Key)
		if name == "" {
			continue
		}
		v.Characters = append(v.Characters, Character{
			Name:    name,
			Gender:  pair.Value.Gender,
			Aliases: cleanAliases(name, pair.Value.Aliases),
		})
	}
	return v
}

func copyEntries(dst, src *orderedmap.OrderedMap[string, Entry]) {
	if src == nil {
		return
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		dst.Set(pair.Key, pair.Value)
	}
}

func cleanAliases(name string, in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" || a == name {
			continue
		}
		out = append(out, a)
	}
	return out
}

func clampCarry(n *int) int {
	if n == nil {
		return DefaultCarryParagraphs
	}
	return min(max(*n, 0), MaxCarryParagraphs)
}
