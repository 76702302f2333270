package dialog

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// dateLayouts are tried in order; the first that parses wins. Day and month
// may be written with one or two digits.
var dateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2.1.2006",
}

var (
	todayWords    = map[string]struct{}{"today": {}, "td": {}}
	tomorrowWords = map[string]struct{}{"tomorrow": {}, "tm": {}, "tmr": {}, "tomo": {}}
)

// ParseError reports user input that is not a recognised date.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognised date %q", e.Input)
}

// ParseDate resolves a keyword or date string relative to today. Empty
// input means today.
func ParseDate(input string, today civil.Date) (civil.Date, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return today, nil
	}
	if _, ok := todayWords[s]; ok {
		return today, nil
	}
	if _, ok := tomorrowWords[s]; ok {
		return today.AddDays(1), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, &ParseError{Input: input}
}

// TodayIn returns a func reporting the current date in loc.
func TodayIn(loc *time.Location, now func() time.Time) func() civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return func() civil.Date {
		return civil.DateOf(now().In(loc))
	}
}
