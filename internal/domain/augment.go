package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrEmptySampleSource is returned when a month needs synthetic rows but the
// city has no real rows to copy categorical values from.
var ErrEmptySampleSource = errors.New("no real rows to sample from")

const monthsPerYear = 12

// AugmentParams configures synthetic row generation.
type AugmentParams struct {
	MinPerMonth        int
	Year               int
	NoiseStdDev        float64
	NumericColumns     []string
	CategoricalColumns []string
	TextColumns        []string
}

// DefaultAugmentParams returns the parameters used for the 2025 dataset.
func DefaultAugmentParams() AugmentParams {
	return AugmentParams{
		MinPerMonth:        20,
		Year:               2025,
		NoiseStdDev:        0.02,
		NumericColumns:     slices.Clone(NumericColumns),
		CategoricalColumns: slices.Clone(CategoricalColumns),
		TextColumns:        slices.Clone(TextColumns),
	}
}

// Random is the randomness source used for sampling, day draws and noise.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
	NormFloat64() float64
}

// MonthCount records how many synthetic rows were generated for a city and month.
type MonthCount struct {
	City  string
	Month int
	Rows  int
}

// AugmentResult is the combined table and a breakdown of what was generated.
type AugmentResult struct {
	Rows      []Dream
	Real      int
	Synthetic int
	Generated []MonthCount
	// NoCity counts real rows with an empty city; they are kept but never augmented.
	NoCity int
}

// Augmenter fills months without real data per city.
type Augmenter struct {
	params AugmentParams
	rng    Random
}

// NewAugmenter creates an Augmenter drawing from rng.
func NewAugmenter(params AugmentParams, rng Random) *Augmenter {
	return &Augmenter{params: params, rng: rng}
}

// PrepareReal tags rows as real and derives year_month (and year/month when
// missing) from each row's date. Rows without a date keep them zero.
func PrepareReal(rows []Dream) []Dream {
	out := make([]Dream, len(rows))
	for i, r := range rows {
		r.DataType = DataTypeReal
		if !r.HasDate() {
			r.YearMonth = time.Time{}
			out[i] = r
			continue
		}
		r.YearMonth = MonthStart(r.Date)
		if r.Year == 0 {
			r.Year = r.Date.Year()
		}
		if r.Month == 0 {
			r.Month = int(r.Date.Month())
		}
		out[i] = r
	}
	return out
}

// Augment generates synthetic rows for every city, then returns real and
// synthetic rows together, stably sorted by date.
func (a *Augmenter) Augment(rows []Dream) (AugmentResult, error) {
	realRows := PrepareReal(rows)

	var cities []string
	byCity := make(map[string][]Dream)
	res := AugmentResult{Real: len(realRows)}
	for _, r := range realRows {
		if r.City == "" {
			res.NoCity++
			continue
		}
		if _, ok := byCity[r.City]; !ok {
			cities = append(cities, r.City)
		}
		byCity[r.City] = append(byCity[r.City], r)
	}

	var synthetic []Dream
	for _, city := range cities {
		generated, counts, err := a.SynthesizeCity(city, byCity[city])
		if err != nil {
			return AugmentResult{}, fmt.Errorf("augment city %q: %w", city, err)
		}
		synthetic = append(synthetic, generated...)
		res.Generated = append(res.Generated, counts...)
	}

	res.Synthetic = len(synthetic)
	res.Rows = Combine(realRows, synthetic)
	return res, nil
}

// SynthesizeCity generates synthetic rows for one city's real rows. Only
// months of the year with no real rows are filled; months that have some real
// rows are left alone even when below the threshold.
func (a *Augmenter) SynthesizeCity(city string, rows []Dream) ([]Dream, []MonthCount, error) {
	var present [monthsPerYear + 1]bool
	for _, r := range rows {
		if r.Month >= 1 && r.Month <= monthsPerYear {
			present[r.Month] = true
		}
	}

	series, err := a.monthlySeries(rows)
	if err != nil {
		return nil, nil, err
	}

	var out []Dream
	var counts []MonthCount
	for month := 1; month <= monthsPerYear; month++ {
		if present[month] {
			continue
		}

		// Counted against month of year across all years, not year_month.
		var monthRows []Dream
		for _, r := range rows {
			if r.Month == month {
				monthRows = append(monthRows, r)
			}
		}
		needed := max(0, a.params.MinPerMonth-len(monthRows))
		if needed == 0 {
			continue
		}

		source := monthRows
		if len(source) == 0 {
			source = rows
		}
		if len(source) == 0 {
			return nil, nil, fmt.Errorf("month %d: %w", month, ErrEmptySampleSource)
		}

		for range needed {
			row, err := a.synthesize(source, month, series)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, row)
		}
		counts = append(counts, MonthCount{City: city, Month: month, Rows: needed})
	}
	return out, counts, nil
}

func (a *Augmenter) synthesize(source []Dream, month int, series map[string][]*float64) (Dream, error) {
	base := source[a.rng.IntN(len(source))]
	day := a.rng.IntN(28) + 1

	row := Dream{
		Date:      time.Date(a.params.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Year:      a.params.Year,
		Month:     month,
		YearMonth: time.Date(a.params.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		DataType:  DataTypeSynthetic,
	}

	for _, col := range slices.Concat(a.params.CategoricalColumns, a.params.TextColumns) {
		v, err := base.Column(col)
		if err != nil {
			return Dream{}, err
		}
		if err := row.SetColumn(col, v); err != nil {
			return Dream{}, err
		}
	}

	for _, col := range a.params.NumericColumns {
		noise := a.rng.NormFloat64() * a.params.NoiseStdDev
		var v *float64
		if mean := series[col][month-1]; mean != nil {
			v = Float(*mean + noise)
		}
		if err := row.SetNumeric(col, v); err != nil {
			return Dream{}, err
		}
	}
	return row, nil
}

type yearMonth struct {
	year  int
	month time.Month
}

type meanAcc struct {
	sum float64
	n   int
}

// monthlySeries averages each numeric column per year_month, places the
// averages on the target year's twelve months (exact year_month match only)
// and fills the gaps.
func (a *Augmenter) monthlySeries(rows []Dream) (map[string][]*float64, error) {
	cols := a.params.NumericColumns
	groups := make(map[yearMonth][]meanAcc)
	for _, r := range rows {
		if r.YearMonth.IsZero() {
			continue
		}
		k := yearMonth{year: r.YearMonth.Year(), month: r.YearMonth.Month()}
		accs, ok := groups[k]
		if !ok {
			accs = make([]meanAcc, len(cols))
			groups[k] = accs
		}
		for i, col := range cols {
			v, err := r.Numeric(col)
			if err != nil {
				return nil, err
			}
			if v != nil {
				accs[i].sum += *v
				accs[i].n++
			}
		}
	}

	series := make(map[string][]*float64, len(cols))
	for i, col := range cols {
		vals := make([]*float64, monthsPerYear)
		for m := 1; m <= monthsPerYear; m++ {
			accs, ok := groups[yearMonth{year: a.params.Year, month: time.Month(m)}]
			if ok && accs[i].n > 0 {
				vals[m-1] = Float(accs[i].sum / float64(accs[i].n))
			}
		}
		series[col] = fillGaps(vals)
	}
	return series, nil
}

// Combine concatenates real and synthetic rows and sorts them by date,
// keeping input order among equal dates. Rows without a date sort last.
func Combine(realRows, synthetic []Dream) []Dream {
	rows := slices.Concat(realRows, synthetic)
	slices.SortStableFunc(rows, func(x, y Dream) int {
		if x.HasDate() != y.HasDate() {
			if x.HasDate() {
				return -1
			}
			return 1
		}
		return x.Date.Compare(y.Date)
	})
	return rows
}
