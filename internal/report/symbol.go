package report

import (
	"regexp"
	"strings"
)

var (
	symbolShapePattern   = regexp.MustCompile(`^[A-Z][A-Z0-9._-]{2,14}$`)
	symbolForeignPattern = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// symbolCandidate proposes the index of a token that may hold the symbol.
type symbolCandidate func(tokens []string, side int) (int, bool)

// symbolRule accepts or rejects a normalized candidate.
type symbolRule func(symbol string) bool

// offsetCandidate proposes the token at a fixed distance from the side keyword.
func offsetCandidate(offset int) symbolCandidate {
	return func(tokens []string, side int) (int, bool) {
		idx := side + offset
		return idx, idx >= 0 && idx < len(tokens)
	}
}

func shapeRule(pattern *regexp.Regexp) symbolRule {
	return pattern.MatchString
}

func blacklistRule(words ...string) symbolRule {
	blocked := make(map[string]struct{}, len(words))
	for _, w := range words {
		blocked[strings.ToLower(w)] = struct{}{}
	}
	return func(symbol string) bool {
		_, found := blocked[strings.ToLower(symbol)]
		return !found
	}
}

// symbolLocator walks its candidates in priority order and returns the first
// one every rule accepts.
type symbolLocator struct {
	candidates []symbolCandidate
	rules      []symbolRule
}

var defaultSymbolLocator = symbolLocator{
	candidates: []symbolCandidate{
		offsetCandidate(2),
		offsetCandidate(1),
		offsetCandidate(3),
		offsetCandidate(-1),
		offsetCandidate(-2),
	},
	rules: []symbolRule{
		blacklistRule("buy", "sell", "balance", "credit", "commission", "swap", "tax"),
		shapeRule(symbolShapePattern),
	},
}

func (l symbolLocator) locate(tokens []string, side int) (int, string, bool) {
	for _, candidate := range l.candidates {
		idx, ok := candidate(tokens, side)
		if !ok {
			continue
		}
		symbol := normalizeSymbol(tokens[idx])
		if symbol != "" && l.accepts(symbol) {
			return idx, symbol, true
		}
	}
	return 0, "", false
}

func (l symbolLocator) accepts(symbol string) bool {
	for _, rule := range l.rules {
		if !rule(symbol) {
			return false
		}
	}
	return true
}

func normalizeSymbol(token string) string {
	return strings.ToUpper(symbolForeignPattern.ReplaceAllString(token, ""))
}
