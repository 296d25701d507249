package cli

import (
	"fmt"
	"strings"
	"time"
)

const missing = "-"

// FormatAmount formats a number with two decimals and comma thousand
// separators, e.g. 1,234,567.89.
func FormatAmount(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	intPart, decPart, _ := strings.Cut(str, ".")

	result := groupThousands(intPart) + "." + decPart
	if negative && result != "0.00" {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatAmount(pnl)
	if pnl > 0 && formatted != "0.00" {
		return "+" + formatted
	}
	return formatted
}

// FormatPrice formats a price, keeping more decimals for small quotes.
func FormatPrice(price float64) string {
	if price >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.5f", price)
}

// FormatOptional formats an optional number, or "-" when absent.
func FormatOptional(v *float64, decimals int) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

// FormatOptionalAmount formats an optional amount, or "-" when absent.
func FormatOptionalAmount(v *float64) string {
	if v == nil {
		return missing
	}
	return FormatAmount(*v)
}

// FormatOptionalPercent formats an optional percentage, or "-" when absent.
func FormatOptionalPercent(v *float64) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// FormatOptionalInt formats an optional count, or "-" when absent.
func FormatOptionalInt(v *int) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%d", *v)
}

// FormatOptionalString returns *s, or "-" when absent.
func FormatOptionalString(s *string) string {
	if s == nil || *s == "" {
		return missing
	}
	return *s
}

// FormatMinutes formats an optional holding time given in minutes.
func FormatMinutes(v *float64) string {
	if v == nil {
		return missing
	}
	return FormatDuration(time.Duration(*v * float64(time.Minute)))
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatDateTime formats a trade timestamp in UTC.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return missing
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// TruncateString truncates a string to maxLen runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
