package libdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Line is a line of a line diff.
type Line struct {
	Op   Op
	Text string
}

func (l Line) String() string {
	return l.Op.String() + " " + l.Text
}

// Lines diffs from and to line by line.
func Lines(from, to string) []Line {
	diffCfg := diffpatch.New()
	a, b, lines := diffCfg.DiffLinesToChars(from, to)
	diffs := diffCfg.DiffCharsToLines(diffCfg.DiffMain(a, b, false), lines)
	var res []Line
	for _, diff := range diffs {
		op := Equal
		switch diff.Type {
		case diffpatch.DiffDelete:
			op = Delete
		case diffpatch.DiffInsert:
			op = Insert
		}
		for ln := range strings.Lines(diff.Text) {
			res = append(res, Line{Op: op, Text: strings.TrimSuffix(ln, "\n")})
		}
	}
	return res
}

// Changed reports whether lines contain a difference.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

// InlineText marks the differences between from and to within a single
// text, as in "speed in [-m/s-]{+km/h+}". It reports false if the texts
// differ too much for the marked form to be useful.
func InlineText(from, to string) (string, bool) {
	diffCfg := diffpatch.New()
	diffs := diffCfg.DiffCleanupSemantic(diffCfg.DiffMain(from, to, false))
	diffSize := 0
	sb := &strings.Builder{}
	for _, diff := range diffs {
		switch diff.Type {
		case diffpatch.DiffInsert:
			sb.WriteString("{+" + diff.Text + "+}")
			diffSize += len(diff.Text)
		case diffpatch.DiffDelete:
			sb.WriteString("[-" + diff.Text + "-]")
			diffSize += len(diff.Text)
		case diffpatch.DiffEqual:
			sb.WriteString(diff.Text)
		}
	}
	if diffSize > max(len(from), len(to))/2 {
		return "", false
	}
	return sb.String(), true
}
