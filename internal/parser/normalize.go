package parser

import (
	"regexp"
	"strings"
)

var (
	// RE2's \w is ASCII-only; the continuation letter is frequently
	// accented in Portuguese text, so match any Unicode letter or digit.
	hyphenBreak    = regexp.MustCompile(`-\n([\p{L}\p{N}])`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
	manyBlankLines = regexp.MustCompile(`\n{3,}`)
	doubleNewline  = regexp.MustCompile(`\n{2,}`)

	endOfSentence = regexp.MustCompile(`[.!?;:…]["')\]]*$`)
	bulletStart   = regexp.MustCompile(`^\s*[•\-–]\s+`)
)

// NormalizePDFText cleans up the artifacts PDF text extraction leaves
// behind: carriage returns, non-breaking spaces, typographic dashes,
// end-of-line hyphenation and broken table headers.
func NormalizePDFText(s string) string {
	s = strings.NewReplacer(
		"\r", "\n",
		" ", " ",
		"–", "-",
		"—", "-",
	).Replace(s)

	// "integra-\nção" -> "integração"
	s = hyphenBreak.ReplaceAllString(s, "$1")

	// Column headers broken across lines, common in PDF layout.
	s = strings.ReplaceAll(s, "Data\nRealizada", "Data Realizada")
	s = strings.ReplaceAll(s, "Actual\nDate", "Actual Date")

	s = trailingSpaces.ReplaceAllString(s, "\n")
	s = manyBlankLines.ReplaceAllString(s, "\n\n")
	return s
}

// JoinSoftBreaks merges the soft line wraps PDF extraction produces back
// into paragraphs. A line joins its predecessor unless the predecessor ends
// a sentence or the line starts a bullet.
func JoinSoftBreaks(text string) string {
	if text == "" {
		return ""
	}

	var out []string
	var buf string

	flush := func() {
		if buf != "" {
			out = append(out, strings.TrimSpace(buf))
			buf = ""
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" {
			flush()
			continue
		}
		if bulletStart.MatchString(line) {
			flush()
			buf = line
			continue
		}
		if buf == "" {
			buf = line
			continue
		}
		if endOfSentence.MatchString(buf) {
			flush()
			buf = line
		} else {
			buf += " " + line
		}
	}
	flush()

	return strings.Join(out, "\n")
}

// tidySection applies the soft-break join and collapses leftover blank
// lines, the final shape prose sections take in the canonical report.
func tidySection(s string) string {
	s = JoinSoftBreaks(s)
	return strings.TrimSpace(doubleNewline.ReplaceAllString(s, "\n"))
}

// firstNonEmptyLine returns the first line with content, or "".
func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var anyWhitespace = regexp.MustCompile(`\s+`)

// collapseWhitespace folds any whitespace run into a single space.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(anyWhitespace.ReplaceAllString(s, " "))
}
