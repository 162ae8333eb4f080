package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the date spellings accepted for dream dates, most common first.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses a dream date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unsupported format", s)
}

// ParseYearMonth splits a "YYYY-MM" string into its year and month.
func ParseYearMonth(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("parse month %q: expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: year: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: month: %w", s, err)
	}
	return year, month, nil
}

// JoinResult is the joined table plus the count of rows with no radiance match.
type JoinResult struct {
	Dreams    []Dream
	Unmatched int
}

type radianceKey struct {
	city  string
	year  int
	month int
}

// Join left-joins radiance onto dreams by exact (city, year, month). Dreams
// without a match keep null radiance. A dream with an empty date is kept
// unmatched, with zero year and month. A dream matching several radiance rows
// is repeated once per match, in radiance order.
func Join(dreams []FlatDream, radiance []Radiance) (JoinResult, error) {
	index := make(map[radianceKey][]Radiance, len(radiance))
	for _, r := range radiance {
		k := radianceKey{city: r.City, year: r.Year, month: r.Month}
		index[k] = append(index[k], r)
	}

	res := JoinResult{Dreams: make([]Dream, 0, len(dreams))}
	for i, fd := range dreams {
		base := Dream{Profile: fd.Profile}
		if strings.TrimSpace(fd.Date) != "" {
			date, err := ParseDate(fd.Date)
			if err != nil {
				return JoinResult{}, fmt.Errorf("join row %d: %w", i, err)
			}
			base.Date = date
			base.Year = date.Year()
			base.Month = int(date.Month())
		}

		var matches []Radiance
		if base.HasDate() {
			matches = index[radianceKey{city: fd.City, year: base.Year, month: base.Month}]
		}
		if len(matches) == 0 {
			res.Unmatched++
			res.Dreams = append(res.Dreams, base)
			continue
		}
		for _, m := range matches {
			row := base
			row.MeanRad = m.MeanRad
			row.MaxRad = m.MaxRad
			row.SumRad = m.SumRad
			res.Dreams = append(res.Dreams, row)
		}
	}
	return res, nil
}
