package report

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Order is the direction in which a value is searched relative to its label.
type Order int

const (
	After Order = iota
	Before
)

func (o Order) String() string {
	if o == Before {
		return "before"
	}
	return "after"
}

// PercentRule constrains whether a candidate token must carry a '%'.
type PercentRule int

const (
	PercentAny PercentRule = iota
	PercentRequired
	PercentForbidden
)

func (r PercentRule) accepts(token string) bool {
	hasPercent := strings.Contains(token, "%")
	switch r {
	case PercentRequired:
		return hasPercent
	case PercentForbidden:
		return !hasPercent
	default:
		return true
	}
}

const defaultWindow = 40

var defaultOrders = []Order{After, Before}

// Descriptor declares how to locate one named value inside a section's text.
type Descriptor struct {
	Label    string
	Patterns []*regexp.Regexp
	Orders   []Order
	Window   int // characters scanned on each side of a label
	Percent  PercentRule
}

var metricTokenPattern = regexp.MustCompile(`(?i)` + signedNumber + `(?:\s*%|[km])?(?:\s*\(\s*` + signedNumber + `\s*%?\s*\))?`)

// ExtractMetric returns the raw value token for d found in text.
//
// Every occurrence of every label pattern is tried, and for each one the
// configured orders are scanned in turn. The first numeric-shaped token that
// passes the percent rule wins. Tokens found before a label are scanned
// nearest-first.
func ExtractMetric(text string, d Descriptor) (value string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = "", false
		}
	}()

	compact := CompactSpaces(text)
	if compact == "" {
		return "", false
	}

	orders := d.Orders
	if len(orders) == 0 {
		orders = defaultOrders
	}
	window := d.Window
	if window <= 0 {
		window = defaultWindow
	}

	for _, pattern := range d.Patterns {
		for _, loc := range pattern.FindAllStringIndex(compact, -1) {
			for _, order := range orders {
				for _, token := range windowTokens(compact, loc, order, window) {
					if d.Percent.accepts(token) {
						return token, true
					}
				}
			}
		}
	}
	return "", false
}

// windowTokens returns the numeric tokens in the window next to a label match,
// nearest to the label first.
func windowTokens(text string, loc []int, order Order, window int) []string {
	if order == Before {
		tokens := metricTokens(windowBefore(text, loc[0], window))
		for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
			tokens[i], tokens[j] = tokens[j], tokens[i]
		}
		return tokens
	}
	return metricTokens(windowAfter(text, loc[1], window))
}

func metricTokens(fragment string) []string {
	matches := metricTokenPattern.FindAllString(fragment, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		token := strings.TrimRight(CompactSpaces(m), ",:;")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func windowAfter(s string, from, n int) string {
	end := from
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[from:end]
}

func windowBefore(s string, to, n int) string {
	start := to
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:start])
		start -= size
	}
	return s[start:to]
}
