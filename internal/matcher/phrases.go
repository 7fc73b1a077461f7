// phrases.go - Client-name hints for speech recognition

package matcher

import (
	"context"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Speech hint limits
const (
	MaxHintPhrases   = 5000
	MaxHintChars     = 100000
	maxHintPhraseLen = 100
)

// PhraseHints returns client names plus their first and last words, shuffled
// so a truncated list still samples the whole registry.
func (m *Matcher) PhraseHints(ctx context.Context) ([]string, error) {
	records, err := m.registry.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var unique []string
	add := func(p string) {
		if p == "" || utf8.RuneCountInString(p) > maxHintPhraseLen {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	for _, rec := range records {
		add(rec.Name)
		parts := strings.Fields(rec.Name)
		if len(parts) > 1 {
			add(parts[0])
			add(parts[len(parts)-1])
		}
	}

	rand.Shuffle(len(unique), func(i, j int) {
		unique[i], unique[j] = unique[j], unique[i]
	})
	return limitPhrases(unique, MaxHintPhrases, MaxHintChars), nil
}

// limitPhrases keeps phrases in order until either limit would be crossed
func limitPhrases(phrases []string, maxCount, maxChars int) []string {
	var out []string
	total := 0
	for _, p := range phrases {
		n := utf8.RuneCountInString(p)
		if len(out) >= maxCount || total+n >= maxChars {
			break
		}
		out = append(out, p)
		total += n
	}
	return out
}
