package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"trade-report/internal/models"
)

var (
	sidePattern         = regexp.MustCompile(`(?i)\b(buy|sell)\b`)
	isoDatePattern      = regexp.MustCompile(`\b(\d{4})[./-](\d{2})[./-](\d{2})\b`)
	dayFirstDatePattern = regexp.MustCompile(`\b(\d{2})[./-](\d{2})[./-](\d{4})\b`)
	timePattern         = regexp.MustCompile(`\b(\d{2}:\d{2}(?::\d{2})?)\b`)
	numericTokenPattern = regexp.MustCompile(`^[-+]?\d+(?:[.,]\d+)?$`)
)

type numericToken struct {
	index int
	raw   string
	value float64
}

// ExtractTradeLine parses one whitespace-collapsed line of a trade history.
// It returns false when the line lacks a side keyword, a date, a symbol, two
// numeric tokens or a positive price.
func ExtractTradeLine(line string) (trade models.TradeRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			trade, ok = models.TradeRecord{}, false
		}
	}()

	sideMatch := sidePattern.FindStringSubmatch(line)
	if sideMatch == nil {
		return models.TradeRecord{}, false
	}
	date, ok := findTradeDate(line)
	if !ok {
		return models.TradeRecord{}, false
	}

	tokens := strings.Fields(line)
	sideWord := strings.ToLower(sideMatch[1])
	sideIndex := -1
	for i, tok := range tokens {
		if strings.ToLower(tok) == sideWord {
			sideIndex = i
			break
		}
	}
	if sideIndex < 0 {
		return models.TradeRecord{}, false
	}

	symbolIndex, symbol, ok := defaultSymbolLocator.locate(tokens, sideIndex)
	if !ok {
		return models.TradeRecord{}, false
	}

	numbers := numericTokens(tokens)
	if len(numbers) < 2 {
		return models.TradeRecord{}, false
	}
	profit := numbers[len(numbers)-1]

	var prices []float64
	for _, n := range numbers {
		if n.index <= symbolIndex || n.index >= profit.index {
			continue
		}
		if !strings.ContainsAny(n.raw, ".,") || n.value <= 0 {
			continue
		}
		prices = append(prices, n.value)
	}
	if len(prices) == 0 {
		return models.TradeRecord{}, false
	}

	side := models.SideLong
	if sideWord == "sell" {
		side = models.SideShort
	}

	return models.TradeRecord{
		Symbol:     symbol,
		Side:       side,
		EntryPrice: round(prices[0], 6),
		ExitPrice:  round(prices[len(prices)-1], 6),
		ProfitLoss: round(profit.value, 2),
		Date:       withTimeOfDay(date, line),
		Notes:      fmt.Sprintf("Import MT5 (%s)", strings.ToUpper(sideWord)),
	}, true
}

// ExtractTrades runs ExtractTradeLine over every line of text and drops
// duplicates, keeping the first occurrence.
func ExtractTrades(text string) []models.TradeRecord {
	var trades []models.TradeRecord
	seen := make(map[models.TradeIdentity]struct{})

	for _, raw := range strings.Split(text, "\n") {
		line := CompactSpaces(raw)
		if line == "" {
			continue
		}
		trade, ok := ExtractTradeLine(line)
		if !ok {
			continue
		}
		key := trade.Identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		trades = append(trades, trade)
	}
	return trades
}

func numericTokens(tokens []string) []numericToken {
	var out []numericToken
	for i, tok := range tokens {
		cleaned := strings.ReplaceAll(tok, "%", "")
		if !numericTokenPattern.MatchString(cleaned) {
			continue
		}
		value, ok := ParseNumber(cleaned)
		if !ok {
			continue
		}
		out = append(out, numericToken{index: i, raw: cleaned, value: value})
	}
	return out
}

func findTradeDate(line string) (time.Time, bool) {
	if m := isoDatePattern.FindStringSubmatch(line); m != nil {
		return civilDate(m[1], m[2], m[3])
	}
	if m := dayFirstDatePattern.FindStringSubmatch(line); m != nil {
		return civilDate(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

func civilDate(year, month, day string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", year+"-"+month+"-"+day)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func withTimeOfDay(date time.Time, line string) time.Time {
	m := timePattern.FindStringSubmatch(line)
	if m == nil {
		return date
	}
	clock := m[1]
	if len(clock) == 5 {
		clock += ":00"
	}
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		return date
	}
	return date.Add(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second)
}
