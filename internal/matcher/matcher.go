// matcher.go - Resolve free-text names or ids to client records

package matcher

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// IDMatchScore is given to an exact id hit so it always resolves uniquely
const IDMatchScore = 1000

var (
	idQuery      = regexp.MustCompile(`^\d{10,13}$`)
	nonNameChars = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Options are the tunable matching thresholds
type Options struct {
	UniqueRatio    float64 // top score must exceed this multiple of the runner-up
	MinQueryLength int
	MinScore       int // candidates at or below are dropped
	MaxCandidates  int
	MaxButtons     int
	ButtonTitleLen int
}

// OptionsFromRules maps the configured rules to matcher options
func OptionsFromRules(r configs.Rules) Options {
	return Options{
		UniqueRatio:    r.UniqueMatchRatio,
		MinQueryLength: r.MinNameQueryLength,
		MinScore:       r.MinCandidateScore,
		MaxCandidates:  r.MaxCandidates,
		MaxButtons:     r.MaxChoiceButtons,
		ButtonTitleLen: 20,
	}
}

// Resolution is the outcome of Resolve
type Resolution struct {
	Candidates []models.MatchCandidate
	Unique     bool
	Selected   *models.ClientRecord // set when Unique
}

// Choice is a quick-reply option presented during disambiguation
type Choice struct {
	ID    string
	Title string
}

// Matcher searches a Registry
type Matcher struct {
	registry Registry
	opts     Options
}

// New creates a Matcher
func New(registry Registry, opts Options) *Matcher {
	return &Matcher{registry: registry, opts: opts}
}

// Search returns candidates sorted by descending score
func (m *Matcher) Search(ctx context.Context, query string) ([]models.MatchCandidate, error) {
	query = strings.TrimSpace(query)
	if idQuery.MatchString(query) {
		rec, ok, err := m.registry.FindByID(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to look up client id: %w", err)
		}
		if !ok {
			return nil, nil
		}
		return []models.MatchCandidate{{Client: rec, Score: IDMatchScore}}, nil
	}

	if utf8.RuneCountInString(query) < m.opts.MinQueryLength {
		return nil, nil
	}

	records, err := m.registry.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	return m.rank(query, records), nil
}

func (m *Matcher) rank(query string, records []models.ClientRecord) []models.MatchCandidate {
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	var matches []models.MatchCandidate
	for _, rec := range records {
		score := ScoreName(queryWords, wordSet(rec.Name))
		if score > m.opts.MinScore {
			matches = append(matches, models.MatchCandidate{Client: rec, Score: score})
		}
	}

	// Stable keeps registry order among equal scores
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > m.opts.MaxCandidates {
		matches = matches[:m.opts.MaxCandidates]
	}
	return matches
}

// ScoreName scores a query word set against a candidate word set.
// Zero shared words scores 0.
func ScoreName(query, candidate map[string]struct{}) int {
	shared := 0
	for w := range query {
		if _, ok := candidate[w]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}

	score := 0
	if shared == len(query) {
		score += 100 * len(query)
	} else {
		score += 20 * shared
	}

	for q := range query {
		if utf8.RuneCountInString(q) <= 2 {
			continue
		}
		for c := range candidate {
			if strings.Contains(c, q) {
				score += 5
				if strings.HasPrefix(c, q) {
					score += 10
				}
			}
		}
	}
	return score
}

// NormalizeName folds accents and case and keeps only [a-z0-9] and spaces
func NormalizeName(s string) string {
	return nonNameChars.ReplaceAllString(common.Fold(s), "")
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(NormalizeName(s)) {
		set[w] = struct{}{}
	}
	return set
}

// IsUnique applies the disambiguation rule: a single candidate, or a top
// score above ratio times the second score.
func IsUnique(candidates []models.MatchCandidate, ratio float64) bool {
	switch len(candidates) {
	case 0:
		return false
	case 1:
		return true
	default:
		return float64(candidates[0].Score) > float64(candidates[1].Score)*ratio
	}
}

// Resolve searches and applies the disambiguation rule
func (m *Matcher) Resolve(ctx context.Context, query string) (Resolution, error) {
	candidates, err := m.Search(ctx, query)
	if err != nil {
		return Resolution{}, err
	}
	res := Resolution{Candidates: candidates, Unique: IsUnique(candidates, m.opts.UniqueRatio)}
	if res.Unique {
		selected := candidates[0].Client
		res.Selected = &selected
	}
	return res, nil
}

// Buttons builds up to MaxButtons choices with ids cliente_0, cliente_1, ...
func (m *Matcher) Buttons(candidates []models.MatchCandidate) []Choice {
	var out []Choice
	for i, c := range candidates {
		if i >= m.opts.MaxButtons {
			break
		}
		out = append(out, Choice{
			ID:    fmt.Sprintf("%s%d", ChoicePrefix, i),
			Title: ButtonTitle(c.Client, m.opts.ButtonTitleLen),
		})
	}
	return out
}

// ButtonTitle renders "First Last - 1234" truncated to maxRunes
func ButtonTitle(rec models.ClientRecord, maxRunes int) string {
	parts := strings.Fields(rec.Name)
	first, last := "", ""
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = parts[len(parts)-1]
	}

	id := []rune(rec.ID)
	if len(id) > 4 {
		id = id[len(id)-4:]
	}

	title := []rune(fmt.Sprintf("%s %s - %s", first, last, string(id)))
	if maxRunes > 0 && len(title) > maxRunes {
		title = title[:maxRunes]
	}
	return string(title)
}

// ChoicePrefix starts every disambiguation button id
const ChoicePrefix = "cliente_"

// ParseChoice maps a "cliente_<i>" button id back to its index.
// The id must carry ChoicePrefix.
func ParseChoice(id string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(id, ChoicePrefix))
	if err != nil {
		return 0, fmt.Errorf("invalid choice id %q: %w", id, err)
	}
	return idx, nil
}
