// matcher.go - Named regex matchers shared by the field extractors

package extractor

import "regexp"

// Matcher is one named pattern in an extractor's ordered list.
// Capture group 1 holds the value.
type Matcher struct {
	Name    string
	Pattern *regexp.Regexp
}

func newMatcher(name, pattern string) Matcher {
	return Matcher{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// FindAll returns every group-1 capture in text, in order
func (m Matcher) FindAll(text string) []string {
	var out []string
	for _, sub := range m.Pattern.FindAllStringSubmatch(text, -1) {
		if len(sub) > 1 {
			out = append(out, sub[1])
		}
	}
	return out
}
