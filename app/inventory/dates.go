package inventory

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the persisted and accepted expiry format.
const DateLayout = "2006-01-02"

// SentinelExpiry marks an item whose expiry was never set.
var SentinelExpiry = time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC)

// ParseDate parses YYYY-MM-DD into a civil date (midnight UTC).
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: "expiry", Reason: fmt.Sprintf("%q is not a date in YYYY-MM-DD format", s)}
	}
	return d, nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// CivilDate drops the clock part of t as observed in loc.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysExpired returns today - expiry in whole days: positive when overdue,
// zero on the expiry day, negative while still valid.
func DaysExpired(today, expiry time.Time) int {
	today = CivilDate(today, nil)
	expiry = CivilDate(expiry, nil)
	return int(today.Sub(expiry).Hours() / 24)
}
