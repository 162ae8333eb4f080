package file

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// Column layouts of the stage files.
var (
	FlatColumns = []string{
		"date", "country_code", "admin1", "city", "gender",
		"type", "impact", "mood", "theme", "perspective", "recurring", "lucidity",
		"keywords",
		"sentiment_neg", "sentiment_neu", "sentiment_pos",
		"valence_mean", "arousal_mean", "dominance_mean",
		"emotions_top3",
	}
	JoinedColumns = slices.Concat(FlatColumns, []string{"year", "month", "mean_rad", "max_rad", "sum_rad"})
	FullColumns   = slices.Concat(JoinedColumns, []string{"data_type", "year_month"})
)

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseFloat reads a nullable number. Empty cells and NaN are null.
func parseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return domain.Float(v), nil
}

// formatInt writes zero as an empty cell; year and month are null for rows
// without a date.
func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// pandas writes integer columns holding nulls as floats ("3.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("invalid integer %q", s)
}

// formatDate writes the date alone for midnight timestamps.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

func dreamCell(d *domain.Dream, col string) (string, error) {
	switch col {
	case "date":
		return formatDate(d.Date), nil
	case "year":
		return formatInt(d.Year), nil
	case "month":
		return formatInt(d.Month), nil
	case "year_month":
		if d.YearMonth.IsZero() {
			return "", nil
		}
		return d.YearMonth.Format(time.DateOnly), nil
	case "data_type":
		return string(d.DataType), nil
	}
	if v, err := d.Numeric(col); err == nil {
		return formatFloat(v), nil
	}
	return d.Column(col)
}

// setDreamCell decodes one cell into d. Columns outside the dream table are
// ignored.
func setDreamCell(d *domain.Dream, col, s string) error {
	var err error
	switch col {
	case "date":
		if strings.TrimSpace(s) == "" {
			d.Date = time.Time{}
			return nil
		}
		d.Date, err = domain.ParseDate(s)
		return err
	case "year":
		d.Year, err = parseInt(s)
		return err
	case "month":
		d.Month, err = parseInt(s)
		return err
	case "year_month":
		if strings.TrimSpace(s) == "" {
			return nil
		}
		var t time.Time
		t, err = domain.ParseDate(s)
		d.YearMonth = domain.MonthStart(t)
		return err
	case "data_type":
		d.DataType = domain.DataType(strings.TrimSpace(s))
		return nil
	}

	if _, err := d.Numeric(col); err == nil {
		v, err := parseFloat(s)
		if err != nil {
			return err
		}
		return d.SetNumeric(col, v)
	}
	if err := d.SetColumn(col, s); err != nil && !errors.Is(err, domain.ErrUnknownColumn) {
		return err
	}
	return nil
}

func flatCell(fd *domain.FlatDream, col string) (string, error) {
	if col == "date" {
		return fd.Date, nil
	}
	d := domain.Dream{Profile: fd.Profile}
	return dreamCell(&d, col)
}

// setFlatCell decodes one cell into fd. The date is kept verbatim.
func setFlatCell(fd *domain.FlatDream, col, s string) error {
	if col == "date" {
		fd.Date = s
		return nil
	}
	if !slices.Contains(FlatColumns, col) {
		return nil
	}
	d := domain.Dream{Profile: fd.Profile}
	if err := setDreamCell(&d, col, s); err != nil {
		return err
	}
	fd.Profile = d.Profile
	return nil
}
