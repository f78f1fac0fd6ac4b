package utils

import (
	"maps"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// ErrJSON produces a standard JSON error response.
func ErrJSON(msg string) map[string]any {
	return map[string]any{
		"success": false,
		"error":   msg,
	}
}

var paragraphRX = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits text on blank lines, dropping empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphRX.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ChunkText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runeLen(text) <= limit {
		return []string{text}
	}

	// Decide primary block unit: paragraphs, else single lines, else whole text.
	var blocks []string
	var joiner string
	if paragraphRX.FindStringIndex(text) != nil {
		blocks = paragraphRX.Split(text, -1)
		joiner = "\n\n"
	} else if strings.Contains(text, "\n") {
		blocks = strings.Split(text, "\n")
		joiner = "\n"
	} else {
		blocks = []string{text}
		joiner = " "
	}

	out := make([]string, 0, len(blocks))
	cur := ""

	var appendPiece func(piece string)
	appendPiece = func(piece string) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return
		}
		if cur == "" {
			if runeLen(piece) <= limit {
				cur = piece
				return
			}
			// piece itself too large: split by spaces safely
			for _, p := range splitBySpaceRune(piece, limit) {
				if cur == "" {
					cur = p
				} else if runeLen(cur)+runeLen(joiner)+runeLen(p) <= limit {
					cur = cur + joiner + p
				} else {
					out = append(out, cur)
					cur = p
				}
			}
			return
		}
		// Try to add with joiner
		if runeLen(cur)+runeLen(joiner)+runeLen(piece) <= limit {
			cur = cur + joiner + piece
			return
		}
		// Flush and handle piece
		out = append(out, cur)
		cur = ""
		appendPiece(piece)
	}

	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		// If block fits, try to pack as-is; otherwise split by spaces.
		if runeLen(b) <= limit {
			appendPiece(b)
		} else {
			for _, p := range splitBySpaceRune(b, limit) {
				appendPiece(p)
			}
		}
	}

	if strings.TrimSpace(cur) != "" {
		out = append(out, cur)
	}
	return out
}

func splitBySpaceRune(s string, limit int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if runeLen(s) <= limit {
		return []string{s}
	}
	var parts []string
	for s != "" {
		if runeLen(s) <= limit {
			parts = append(parts, s)
			break
		}
		idx := lastWhitespaceByteIndexBeforeRuneLimit(s, limit)
		if idx <= 0 {
			// No whitespace before limit; hard-cut at rune boundary
			cut := byteIndexAtRunePos(s, limit)
			parts = append(parts, strings.TrimSpace(s[:cut]))
			s = strings.TrimSpace(s[cut:])
			continue
		}
		parts = append(parts, strings.TrimSpace(s[:idx]))
		s = strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
	}
	return parts
}

func lastWhitespaceByteIndexBeforeRuneLimit(s string, limit int) int {
	rc := 0
	last := -1
	for i, r := range s {
		if rc >= limit {
			break
		}
		if unicode.IsSpace(r) {
			last = i
		}
		rc++
	}
	return last
}

func byteIndexAtRunePos(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	i := 0
	for pos > 0 && i < len(s) {
		_, sz := utf8.DecodeRuneInString(s[i:])
		i += sz
		pos--
	}
	return i
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// LimitStr returns a string truncated to n characters with "..." appended if longer.
func LimitStr(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// CleanJSON removes markdown code blocks from a string to extract raw JSON.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	// Remove markdown code blocks
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 {
			// Remove first line (```json) and last line (```)
			if strings.HasPrefix(lines[0], "```") {
				lines = lines[1:]
			}
			if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
				lines = lines[:len(lines)-1]
			}
			s = strings.Join(lines, "\n")
		}
	}
	return strings.TrimSpace(s)
}

// SyncMap is a generic map guarded by an RWMutex.
type SyncMap[M ~map[K]V, K comparable, V any] struct {
	mu   sync.RWMutex
	data M
}

func NewSyncMap[M ~map[K]V, K comparable, V any]() *SyncMap[M, K, V] {
	return &SyncMap[M, K, V]{
		data: make(M),
	}
}

func (m *SyncMap[M, K, V]) Load(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *SyncMap[M, K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *SyncMap[M, K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *SyncMap[M, K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Snapshot returns a copy of the current contents.
func (m *SyncMap[M, K, V]) Snapshot() M {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}
