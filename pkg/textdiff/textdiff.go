// Package textdiff computes line-level diffs between file revisions.
// It backs the CLI diff output; the repository engine itself compares
// content by blob identity only.
package textdiff

import (
	"strings"
)

// Lines computes a line-level edit script between byte slices a and b.
func Lines(a, b []byte) []Op {
	return Myers(splitLines(string(a)), splitLines(string(b)))
}

// Changed reports whether the edit script contains any non-equal operation.
func Changed(ops []Op) bool {
	for _, op := range ops {
		if op.Kind != Equal {
			return true
		}
	}
	return false
}

// Format renders an edit script in a compact +/- form with a few lines of
// context around each change, suitable for terminal output.
func Format(ops []Op) string {
	const context = 3

	// Mark which ops must be shown: every change plus surrounding context.
	show := make([]bool, len(ops))
	for i, op := range ops {
		if op.Kind == Equal {
			continue
		}
		lo := i - context
		if lo < 0 {
			lo = 0
		}
		hi := i + context
		if hi >= len(ops) {
			hi = len(ops) - 1
		}
		for j := lo; j <= hi; j++ {
			show[j] = true
		}
	}

	var b strings.Builder
	skipping := false
	for i, op := range ops {
		if !show[i] {
			if !skipping {
				b.WriteString("...\n")
				skipping = true
			}
			continue
		}
		skipping = false
		switch op.Kind {
		case Insert:
			b.WriteString("+")
		case Delete:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(op.Line)
		b.WriteString("\n")
	}
	return b.String()
}

// splitLines splits s into lines. A trailing newline does not produce an
// extra empty element (matching standard text file conventions).
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
