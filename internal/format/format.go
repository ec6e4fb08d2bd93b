// Package format renders amounts, dates and contact data the way operators in
// Brazilian units expect to read them.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	dateLayout  = "02/01/2006"
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// ErrInvalidMonth is returned when a reference month is not in YYYY-MM form.
var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

var (
	printer   = message.NewPrinter(language.BrazilianPortuguese)
	nonDigits = regexp.MustCompile(`\D+`)
	nonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Currency formats an amount as Brazilian reais, e.g. R$ 1.234,56.
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	value, _ := rounded.Float64()
	return sign + "R$ " + printer.Sprintf("%.2f", value)
}

// Date formats a date as dd/mm/yyyy. Zero times render empty.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// DateString reformats a YYYY-MM-DD (or RFC3339) string as dd/mm/yyyy and
// returns the input untouched when it cannot be parsed.
func DateString(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= len(dayLayout) {
		if t, err := time.Parse(dayLayout, raw[:len(dayLayout)]); err == nil {
			return Date(t)
		}
	}
	return raw
}

// Month is a calendar month used as the reference period of every financial list.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM reference month.
func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(raw))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start is the first instant of the month in UTC.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last calendar day of the month (midnight UTC).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// String renders YYYY-MM.
func (m Month) String() string {
	return m.Start().Format(monthLayout)
}

// FirstDay renders YYYY-MM-01, the form stored procedures expect.
func (m Month) FirstDay() string {
	return m.Start().Format(dayLayout)
}

// IsZero reports whether the month was never set.
func (m Month) IsZero() bool {
	return m.Year == 0
}

// NormalizePhone strips formatting and applies the country code to local
// numbers so the result can be used in a wa.me link.
func NormalizePhone(raw, countryCode string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 13 && strings.HasPrefix(digits, countryCode):
		return digits
	case len(digits) == 11, len(digits) == 10:
		return countryCode + digits
	default:
		return digits
	}
}

// Slugify lowercases, strips accents and joins words with dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = nonSlug.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(folded, "-")
}
