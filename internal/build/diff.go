package build

import (
	"fmt"
	"io"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// writeDiff renders the changed lines between two serialized trees. Nothing
// is written when the trees are identical.
func writeDiff(w io.Writer, name, before, after string, colorize bool) error {
	if before == after {
		return nil
	}
	dmp := diffpatch.New()
	fromChars, toChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(fromChars, toChars, false), lines)

	var b strings.Builder
	header := fmt.Sprintf("--- %s\n+++ %s (patched)\n", name, name)
	b.WriteString(paint(header, ansiCyan, colorize))
	for _, d := range diffs {
		var prefix, color string
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix, color = "+", ansiGreen
		case diffpatch.DiffDelete:
			prefix, color = "-", ansiRed
		default:
			continue
		}
		for _, line := range splitLines(d.Text) {
			b.WriteString(paint(prefix+line+"\n", color, colorize))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

func paint(text, color string, colorize bool) string {
	if !colorize {
		return text
	}
	body := strings.TrimSuffix(text, "\n")
	suffix := text[len(body):]
	return color + body + ansiReset + suffix
}
