package output

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
	"github.com/iancoleman/strcase"
)

// Float parses a numeric string, returning 0 for empty or malformed input.
func Float(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Money formats v as "$1,234.56" or "-$1,234.56".
func Money(v float64) string {
	s := "$" + humanize.FormatFloat("#,###.##", math.Abs(v))
	if v < 0 {
		return "-" + s
	}
	return s
}

// SignedMoney is Money with an explicit "+" for non-negative values.
func SignedMoney(v float64) string {
	if v >= 0 {
		return "+" + Money(v)
	}
	return Money(v)
}

// Percent formats a ratio (0.0123) as "+1.23%".
func Percent(ratio float64) string {
	return SignedFloat(ratio*100) + "%"
}

// SignedFloat formats v with two decimals and an explicit sign.
func SignedFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if v >= 0 {
		return "+" + s
	}
	return s
}

// Count formats an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Time parses a timestamp in any common API format. The original offset is
// kept.
func Time(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Date formats a timestamp as 2006-01-02, or returns s when unparseable.
func Date(s string) string {
	t, ok := Time(s)
	if !ok {
		return s
	}
	return t.Format("2006-01-02")
}

// DateTime formats a timestamp as 2006-01-02 15:04, or returns s when
// unparseable.
func DateTime(s string) string {
	t, ok := Time(s)
	if !ok {
		return s
	}
	return t.Format("2006-01-02 15:04")
}

// Relative describes t relative to now ("3 hours ago").
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// Label turns an API identifier ("partially_filled", "createCard") into
// "Partially filled" / "Create card".
func Label(s string) string {
	words := strcase.ToDelimited(s, ' ')
	r, size := utf8.DecodeRuneInString(words)
	if r == utf8.RuneError {
		return words
	}
	return string(unicode.ToUpper(r)) + words[size:]
}

// Truncate shortens s to n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// OneLine replaces newlines with spaces.
func OneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// Untitled returns "(untitled)" for blank names.
func Untitled(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
