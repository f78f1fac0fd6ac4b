package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/aryann/difflib"

	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/utils"
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "equal"
	}
}

func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Op) UnmarshalText(b []byte) error {
	switch string(b) {
	case "insert":
		*o = Insert
	case "delete":
		*o = Delete
	case "equal":
		*o = Equal
	default:
		return fmt.Errorf("unknown diff op %q", b)
	}
	return nil
}

type WordDelta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// BlockDiff is the word-level difference between a block before and after a pass.
type BlockDiff struct {
	Index  int         `json:"index"`
	Old    string      `json:"old"`
	New    string      `json:"new"`
	Deltas []WordDelta `json:"deltas"`
	// Swaps counts the words that were replaced.
	Swaps int `json:"swaps"`
}

// Blocks diffs every change a pass recorded.
func Blocks(changes []pronoun.Change) []BlockDiff {
	out := make([]BlockDiff, 0, len(changes))
	for _, c := range changes {
		deltas := Words(c.Before, c.After)
		out = append(out, BlockDiff{
			Index:  c.Index,
			Old:    c.Before,
			New:    c.After,
			Deltas: deltas,
			Swaps:  countSwaps(deltas),
		})
	}
	return out
}

// Words diffs a and b word by word. Runs of whitespace between equal words are
// folded into the surrounding equal text.
func Words(a, b string) []WordDelta {
	if a == b {
		return []WordDelta{{Op: Equal, Text: a}}
	}
	recs := difflib.Diff(utils.TokenizeWords(a), utils.TokenizeWords(b))
	deltas := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			deltas = append(deltas, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			deltas = append(deltas, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			deltas = append(deltas, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return coalesce(deltas)
}

func coalesce(in []WordDelta) []WordDelta {
	out := make([]WordDelta, 0, len(in))
	for _, d := range in {
		if n := len(out); n > 0 && out[n-1].Op == d.Op {
			out[n-1].Text += d.Text
			continue
		}
		out = append(out, d)
	}
	return out
}

func countSwaps(deltas []WordDelta) int {
	n := 0
	for _, d := range deltas {
		if d.Op == Insert && strings.TrimSpace(d.Text) != "" {
			n += len(strings.Fields(d.Text))
		}
	}
	return n
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgCyan    = "\x1b[36m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

func render(deltas []WordDelta, color bool) string {
	var b strings.Builder
	for _, d := range deltas {
		switch {
		case d.Op == Equal:
			b.WriteString(d.Text)
		case color && d.Op == Insert:
			fmt.Fprintf(&b, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case color && d.Op == Delete:
			fmt.Fprintf(&b, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		case d.Op == Insert:
			fmt.Fprintf(&b, "{+%s+}", d.Text)
		case d.Op == Delete:
			fmt.Fprintf(&b, "[-%s-]", d.Text)
		}
	}
	return b.String()
}

// Render writes the diff inline, marking deletions [-like this-] and
// insertions {+like this+}.
func (d BlockDiff) Render() string {
	return render(d.Deltas, false)
}

// Print writes all diffs to w, with ANSI colors when color is set.
func Print(w io.Writer, diffs []BlockDiff, color bool) {
	for _, d := range diffs {
		head := fmt.Sprintf("#%d (%d swapped)", d.Index, d.Swaps)
		if color {
			head = fgCyan + head + ansiReset
		}
		fmt.Fprintln(w, head)
		fmt.Fprintf(w, "  %s\n", render(d.Deltas, color))
	}
}
