package summary

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Currency amounts the model tends to mangle: "R$1.234,56", "R 500.000",
	// "r$ 1.234, 56". Both the thousands-grouped and plain decimal forms.
	moneyToken = regexp.MustCompile(`(?i)R\s*\$?\s*(\d{1,3}(?:\.\d{3})+(?:,\s*\d{2})?|\d{1,3},\s*\d{2})`)

	letterThenDigit = regexp.MustCompile(`([A-Za-zÁ-ú])(\d)`)
	digitThenLetter = regexp.MustCompile(`(\d)([A-Za-zÁ-ú])`)

	// The concatenation models produce most often in pt-BR output.
	gluedDeUm = regexp.MustCompile(`(?i)\bdeum\b`)

	markdownMeta = regexp.MustCompile("([*_~`])")
)

// Sanitize cleans pt-BR model output for display: NFC normalization,
// whitespace collapsing, currency respacing, glued word/number splitting and
// markdown metacharacter escaping.
func Sanitize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))

	s = moneyToken.ReplaceAllStringFunc(s, func(m string) string {
		amount := moneyToken.FindStringSubmatch(m)[1]
		return "R$ " + strings.ReplaceAll(amount, " ", "")
	})

	s = letterThenDigit.ReplaceAllString(s, "$1 $2")
	s = digitThenLetter.ReplaceAllString(s, "$1 $2")
	s = gluedDeUm.ReplaceAllString(s, "de um")

	return markdownMeta.ReplaceAllString(s, `\$1`)
}
