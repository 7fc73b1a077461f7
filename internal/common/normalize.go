// normalize.go - Accent folding shared by the classifier, extractor and matcher

package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks: "Pacífico" -> "Pacifico", "señal" -> "senal"
func StripAccents(s string) string {
	// transform.Chain keeps state, so it is built per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases and strips accents. Every keyword comparison goes through it.
func Fold(s string) string {
	return StripAccents(strings.ToLower(s))
}

// FoldAll folds each entry of list
func FoldAll(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = Fold(s)
	}
	return out
}

// ContainsAny reports whether folded text contains any of the folded needles
func ContainsAny(folded string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(folded, n) {
			return true
		}
	}
	return false
}
