package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted date format in uploads.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD date. Unlike the numeric coercers
// a bad date is a row-level failure, not a zero value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// CoerceInt64 parses an integer field, tolerating thousands separators and
// float renderings. Unparseable values coerce to zero.
func CoerceInt64(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// CoerceDecimal parses a decimal field. Unparseable values coerce to zero.
func CoerceDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
