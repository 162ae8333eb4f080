package domain

import (
	"errors"
	"fmt"
	"time"
)

// ListSeparator joins list-valued fields (keywords, emotions_top3) into one cell.
const ListSeparator = ", "

// ErrUnknownColumn is returned when a column name is not part of the dream table.
var ErrUnknownColumn = errors.New("unknown column")

// DataType tags a row as observed or generated.
type DataType string

const (
	DataTypeReal      DataType = "real"
	DataTypeSynthetic DataType = "synthetic"
)

// Column groups used by the augmenter. Names match the CSV headers.
var (
	NumericColumns = []string{
		"sentiment_neg", "sentiment_neu", "sentiment_pos",
		"valence_mean", "arousal_mean", "dominance_mean",
		"mean_rad", "max_rad", "sum_rad",
	}
	CategoricalColumns = []string{
		"country_code", "admin1", "city", "gender", "type", "impact",
		"mood", "theme", "perspective", "recurring", "lucidity",
	}
	TextColumns     = []string{"keywords", "emotions_top3"}
	RadianceColumns = []string{"mean_rad", "max_rad", "sum_rad"}
)

// Profile holds the per-dream columns shared by every stage. Empty strings and
// nil pointers are nulls.
type Profile struct {
	CountryCode string `json:"country_code"`
	Admin1      string `json:"admin1"`
	City        string `json:"city"`
	Gender      string `json:"gender"`

	Type        string `json:"type"`
	Impact      string `json:"impact"`
	Mood        string `json:"mood"`
	Theme       string `json:"theme"`
	Perspective string `json:"perspective"`
	Recurring   string `json:"recurring"`
	Lucidity    string `json:"lucidity"`
	Keywords    string `json:"keywords"`

	SentimentNeg  *float64 `json:"sentiment_neg"`
	SentimentNeu  *float64 `json:"sentiment_neu"`
	SentimentPos  *float64 `json:"sentiment_pos"`
	ValenceMean   *float64 `json:"valence_mean"`
	ArousalMean   *float64 `json:"arousal_mean"`
	DominanceMean *float64 `json:"dominance_mean"`
	EmotionsTop3  string   `json:"emotions_top3"`
}

// FlatDream is one flattened dream entry. Date is kept exactly as recorded.
type FlatDream struct {
	Date string `json:"date"`
	Profile
}

// Radiance is one VIIRS night-light observation for a city and month.
type Radiance struct {
	City    string
	Year    int
	Month   int
	MeanRad *float64
	MaxRad  *float64
	SumRad  *float64
}

// Dream is a row of the joined and augmented tables.
type Dream struct {
	Date time.Time `json:"date"`
	Profile

	Year      int       `json:"year"`
	Month     int       `json:"month"`
	YearMonth time.Time `json:"year_month"`

	MeanRad *float64 `json:"mean_rad"`
	MaxRad  *float64 `json:"max_rad"`
	SumRad  *float64 `json:"sum_rad"`

	DataType DataType `json:"data_type"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// HasDate reports whether the row carries a date. Rows without one keep zero
// year, month and year_month.
func (d *Dream) HasDate() bool {
	return !d.Date.IsZero()
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (d *Dream) numericField(col string) (**float64, error) {
	switch col {
	case "sentiment_neg":
		return &d.SentimentNeg, nil
	case "sentiment_neu":
		return &d.SentimentNeu, nil
	case "sentiment_pos":
		return &d.SentimentPos, nil
	case "valence_mean":
		return &d.ValenceMean, nil
	case "arousal_mean":
		return &d.ArousalMean, nil
	case "dominance_mean":
		return &d.DominanceMean, nil
	case "mean_rad":
		return &d.MeanRad, nil
	case "max_rad":
		return &d.MaxRad, nil
	case "sum_rad":
		return &d.SumRad, nil
	default:
		return nil, fmt.Errorf("numeric %q: %w", col, ErrUnknownColumn)
	}
}

// Numeric returns the value of a numeric column, nil when null.
func (d *Dream) Numeric(col string) (*float64, error) {
	f, err := d.numericField(col)
	if err != nil {
		return nil, err
	}
	return *f, nil
}

// SetNumeric overwrites a numeric column.
func (d *Dream) SetNumeric(col string, v *float64) error {
	f, err := d.numericField(col)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (p *Profile) stringField(col string) (*string, error) {
	switch col {
	case "country_code":
		return &p.CountryCode, nil
	case "admin1":
		return &p.Admin1, nil
	case "city":
		return &p.City, nil
	case "gender":
		return &p.Gender, nil
	case "type":
		return &p.Type, nil
	case "impact":
		return &p.Impact, nil
	case "mood":
		return &p.Mood, nil
	case "theme":
		return &p.Theme, nil
	case "perspective":
		return &p.Perspective, nil
	case "recurring":
		return &p.Recurring, nil
	case "lucidity":
		return &p.Lucidity, nil
	case "keywords":
		return &p.Keywords, nil
	case "emotions_top3":
		return &p.EmotionsTop3, nil
	default:
		return nil, fmt.Errorf("text %q: %w", col, ErrUnknownColumn)
	}
}

// Column returns the value of a categorical or serialized-list column.
func (p *Profile) Column(col string) (string, error) {
	f, err := p.stringField(col)
	if err != nil {
		return "", err
	}
	return *f, nil
}

// SetColumn overwrites a categorical or serialized-list column.
func (p *Profile) SetColumn(col, v string) error {
	f, err := p.stringField(col)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
