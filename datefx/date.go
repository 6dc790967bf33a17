// Package datefx animates exhibition date ranges and formats page dates
package datefx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadDate is returned for strings that are not a real DD.MM.YYYY date
var ErrBadDate = errors.New("bad date")

// Layout is the display format of every date on the site
const Layout = "02.01.2006"

// Parse reads DD.MM.YYYY; single-digit day and month are accepted
func Parse(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes 31.02 into March; reject instead
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return t, nil
}

// Format renders t as DD.MM.YYYY
func Format(t time.Time) string {
	return t.Format(Layout)
}

// LastUpdated renders the footer stamp, e.g. "Last updated: 2 January 2006"
func LastUpdated(t time.Time) string {
	return "Last updated: " + t.Format("2 January 2006")
}
