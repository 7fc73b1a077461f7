// document.go - Transaction / reference number extraction

package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// DocumentNotFound is returned when no candidate survives the filters
const DocumentNotFound = "No encontrado"

// documentPunctuation is everything except letters, digits, underscore, whitespace and periods
var documentPunctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s.]`)

var (
	amountShape = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*\.\d{2}$`)
	dateShape   = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

// DocumentMatchers run from most to least specific
var DocumentMatchers = []Matcher{
	newMatcher("transaction_code", `\bno\.(jm\d{4}[a-z]{3}\d+)\b`),
	newMatcher("no_long", `\bno\.\s*([a-z0-9]{10,})\b`),
	newMatcher("transaction", `(?:no\.|nro\.|numero\s+de)?\s*transaccion\s*:?:?\s*#?\s*([a-z0-9-]{6,25})\b`),
	newMatcher("movement_code", `cod\.\s*movimiento\s*:?:?\s*([a-z0-9]{6,25})\b`),
	newMatcher("labeled", `(?:comprobante|no\.|referencia|ref|secuencial|documento|movimiento|cod|doc)\.?\s*:?:?\s*([a-z0-9-]{6,25})\b`),
	newMatcher(alphanumericMatcher, `\b([a-z0-9]{7,25})\b`),
	newMatcher("long_number", `\b(\d{9,25})\b`),
}

// alphanumericMatcher only accepts a capture when a digit follows later on the same line
const alphanumericMatcher = "alphanumeric"

// NormalizeDocumentText folds the text and blanks punctuation other than periods
func NormalizeDocumentText(text string) string {
	return documentPunctuation.ReplaceAllString(common.Fold(text), " ")
}

// ExtractDocumentNumber returns the first surviving candidate, uppercased
func (e *Extractor) ExtractDocumentNumber(text string) string {
	if text == "" {
		return DocumentNotFound
	}
	normalized := NormalizeDocumentText(text)

	for _, m := range DocumentMatchers {
		for _, loc := range m.Pattern.FindAllStringSubmatchIndex(normalized, -1) {
			if loc[2] < 0 {
				continue
			}
			candidate := strings.TrimSpace(normalized[loc[2]:loc[3]])
			if m.Name == alphanumericMatcher && !digitLaterOnLine(normalized, loc[1]) {
				continue
			}
			if e.acceptDocument(candidate) {
				return strings.ToUpper(candidate)
			}
		}
	}
	return DocumentNotFound
}

func (e *Extractor) acceptDocument(candidate string) bool {
	if _, excluded := e.documentExclusions[candidate]; excluded {
		return false
	}
	if amountShape.MatchString(candidate) || dateShape.MatchString(candidate) {
		return false
	}
	if len(candidate) < 6 {
		return false
	}
	return strings.IndexFunc(candidate, unicode.IsDigit) >= 0 || len(candidate) > 8
}

func digitLaterOnLine(text string, from int) bool {
	rest := text[from:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.IndexFunc(rest, unicode.IsDigit) >= 0
}
