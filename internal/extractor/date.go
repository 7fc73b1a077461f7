// date.go - Payment date extraction, normalized to DD/MM/YYYY

package extractor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// DateLayout is the output format of every extracted date
const DateLayout = "02/01/2006"

var spanishMonths = map[string]string{
	"ene": "01", "feb": "02", "mar": "03", "abr": "04", "may": "05", "jun": "06",
	"jul": "07", "ago": "08", "sep": "09", "oct": "10", "nov": "11", "dic": "12",
}

type dateMatcher struct {
	Matcher
	// build turns the captured groups into DD/MM/YYYY
	build func(groups []string) (string, bool)
}

// dateMatchers in priority order. The day-first shapes need a non-digit
// before the day so "2024-01-15" is not read as 24/01/2015.
var dateMatchers = []dateMatcher{
	{
		Matcher: newMatcher("day_month_name_year", `(?:^|\D)(\d{1,2})[/\s-]([a-z]{3})[/\s-](\d{2,4})`),
		build: func(g []string) (string, bool) {
			return formatDate(g[1], spanishMonths[g[2]], g[3])
		},
	},
	{
		Matcher: newMatcher("year_month_name_day", `(\d{4})[/\s-]([a-z]{3})[/\s-](\d{1,2})`),
		build: func(g []string) (string, bool) {
			return formatDate(g[3], spanishMonths[g[2]], g[1])
		},
	},
	{
		Matcher: newMatcher("day_month_year", `(?:^|\D)(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`),
		build: func(g []string) (string, bool) {
			return formatDate(g[1], g[2], g[3])
		},
	},
	{
		Matcher: newMatcher("year_month_day", `(\d{4})[/-](\d{1,2})[/-](\d{1,2})`),
		build: func(g []string) (string, bool) {
			return formatDate(g[3], g[2], g[1])
		},
	},
}

// ParseDate returns the first date found by the matchers in priority order
func ParseDate(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	folded := common.Fold(text)
	for _, m := range dateMatchers {
		for _, groups := range m.Pattern.FindAllStringSubmatch(folded, -1) {
			if date, ok := m.build(groups); ok {
				return date, true
			}
		}
	}
	return "", false
}

// ExtractDate returns the receipt date or, failing that, now formatted the same way
func ExtractDate(text string, now time.Time) string {
	if date, ok := ParseDate(text); ok {
		return date
	}
	common.Logger().Debug("date not found in text, using processing date",
		zap.String("fallback", now.Format(DateLayout)))
	return now.Format(DateLayout)
}

// formatDate zero-pads day and month and expands two-digit years.
// An unknown month name (empty month) rejects the match.
func formatDate(day, month, year string) (string, bool) {
	if month == "" {
		return "", false
	}
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s/%s/%s", pad2(day), pad2(month), year), true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
