// Package parser turns project-status documents (PDF, DOCX, XLSX) into
// canonical reports. Extraction is regex-driven: single-line patterns for
// scalar fields, multi-line block patterns for prose sections, and a lenient
// currency normalizer for financial lines.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CompileLine compiles a single-line extraction pattern: case-insensitive,
// ^ and $ anchor per line, and `.` never crosses a line break. The pattern
// must contain exactly one capture group.
func CompileLine(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?im)" + pattern)
}

// MustCompileLine is CompileLine for built-in templates.
func MustCompileLine(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?im)" + pattern)
}

// CompileBlock compiles a multi-line block extraction pattern: same flags as
// CompileLine plus `s`, so the captured group may span lines.
func CompileBlock(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?ims)" + pattern)
}

// MustCompileBlock is CompileBlock for built-in templates.
func MustCompileBlock(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?ims)" + pattern)
}

// ExtractLine returns the trimmed first capture group of a line-compiled
// pattern. ok is false when the pattern does not match.
func ExtractLine(text string, re *regexp.Regexp) (string, bool) {
	return firstGroup(text, re)
}

// ExtractBlock returns the trimmed first capture group of a block-compiled
// pattern. ok is false when the pattern does not match.
func ExtractBlock(text string, re *regexp.Regexp) (string, bool) {
	return firstGroup(text, re)
}

func firstGroup(text string, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractSection returns the text between a section header match and the
// next stop match (or end of text). Empty when the header is absent.
func ExtractSection(text string, header, stop *regexp.Regexp) string {
	h := header.FindStringIndex(text)
	if h == nil {
		return ""
	}
	rest := text[h[1]:]
	if s := stop.FindStringIndex(rest); s != nil {
		rest = rest[:s[0]]
	}
	return strings.TrimSpace(rest)
}

var (
	// Currency symbols, whitespace and thousand-separator periods all go;
	// the decimal comma then becomes a decimal point.
	currencyJunk = regexp.MustCompile(`[R$€£\s.]`)
	firstNumber  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Money converts locale-formatted monetary text ("R$ 1.234,56",
// "(Estouro) R$ -200,00") into a float64. Unparseable or empty input yields
// 0.0: one malformed financial field must never abort a parse.
func Money(s string) float64 {
	cleaned := currencyJunk.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	token := firstNumber.FindString(cleaned)
	if token == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// Dash placeholders used for "no date yet" in the report templates.
var datePlaceholders = map[string]struct{}{
	"—": {}, "–": {}, "-": {}, "‐": {}, "―": {},
}

// Date parses a DD/MM/YYYY token (separator `-` tolerated, single-digit day
// and month tolerated). Placeholder dashes and malformed input return
// ok=false rather than an error.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if _, isDash := datePlaceholders[s]; isDash {
		return time.Time{}, false
	}
	s = strings.ReplaceAll(s, "-", "/")
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
