package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxDiffLines    = 200
	truncateMessage = "... (diff truncated) ..."
)

// Payloads renders a line oriented diff between an expected and a received message payload.
// It returns an empty string when both payloads are identical.
func Payloads(expected, actual string) string {
	if expected == actual {
		return ""
	}

	dmp := diffmatchpatch.New()
	expChars, actChars, lineArray := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffMain(expChars, actChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var b strings.Builder
	b.WriteString("--- expected\n+++ received\n")

	written := 0
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}

		for _, line := range splitLines(d.Text) {
			if written == maxDiffLines {
				b.WriteString(truncateMessage)
				b.WriteString("\n")
				return b.String()
			}
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteString("\n")
			written++
		}
	}

	return b.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
