package parse

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day validates a YYYY-MM-DD date in the admin timezone and returns it in
// canonical form.
func Day(s string, loc *time.Location) (string, error) {
	d, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d.Format(dayLayout), nil
}

// DayRange validates an inclusive day range. Either bound may be empty; when
// both are present the start must not be after the end.
func DayRange(startDate, endDate string, loc *time.Location) (string, string, error) {
	var start, end string
	var err error

	if startDate != "" {
		if start, err = Day(startDate, loc); err != nil {
			return "", "", err
		}
	}
	if endDate != "" {
		if end, err = Day(endDate, loc); err != nil {
			return "", "", err
		}
	}
	if start != "" && end != "" && start > end {
		return "", "", fmt.Errorf("start_date %s is after end_date %s", start, end)
	}
	return start, end, nil
}
