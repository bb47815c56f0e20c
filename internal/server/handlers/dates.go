package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

const defaultWindowDays = 30

// parseDateRange reads start_date/end_date query parameters. Date-only
// values widen to the full day: the start to midnight, the end to the last
// instant of that day. Missing values default to the trailing window.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()

	end, err := parseDateParam(r.URL.Query().Get("end_date"), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end.IsZero() {
		end = now
	}

	start, err := parseDateParam(r.URL.Query().Get("start_date"), false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if start.IsZero() {
		days := defaultWindowDays
		if v := r.URL.Query().Get("days"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 || parsed > 365 {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid days parameter %q", v)
			}

			days = parsed
		}

		start = end.AddDate(0, 0, -(days - 1))
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	}

	return start, end, nil
}

// parseDateParam accepts both date-only and full timestamp forms. A
// date-only end widens to 23:59:59 of that day.
func parseDateParam(value string, isEnd bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.DateOnly, value); err == nil {
		if isEnd {
			return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC), nil
		}

		return t.UTC(), nil
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}

	return t.UTC(), nil
}
