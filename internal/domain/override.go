package domain

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoSourceRow is returned when a copy override finds no row to copy from.
var ErrNoSourceRow = errors.New("no source row")

// Override patches numeric cells of every row matching (City, Month), of any
// data type. It either copies Columns from the first row of CopyFromMonth for
// the same city, or sets literal values.
type Override struct {
	City          string
	Month         int
	CopyFromMonth int
	Columns       []string
	Set           map[string]float64
}

// DefaultOverrides are the manual VIIRS corrections for the 2025 dataset.
func DefaultOverrides() []Override {
	return []Override{
		{City: "Toronto", Month: 4, CopyFromMonth: 3, Columns: slices.Clone(RadianceColumns)},
		{City: "Toronto", Month: 1, Set: map[string]float64{
			"mean_rad": 65.72076968,
			"max_rad":  455.2600098,
			"sum_rad":  233956.6618,
		}},
		{City: "Mississauga", Month: 1, Set: map[string]float64{
			"mean_rad": 44.621985,
			"max_rad":  285.519989,
			"sum_rad":  72063.10586,
		}},
	}
}

// Validate checks that the override is either a copy or a set, and that it
// only names numeric columns.
func (o Override) Validate() error {
	if o.City == "" {
		return errors.New("override: city is required")
	}
	if o.Month < 1 || o.Month > monthsPerYear {
		return fmt.Errorf("override %s: month %d out of range", o.City, o.Month)
	}
	isCopy := o.CopyFromMonth != 0
	if isCopy == (len(o.Set) > 0) {
		return fmt.Errorf("override %s/%d: exactly one of copy_from_month or set is required", o.City, o.Month)
	}
	if isCopy && (o.CopyFromMonth < 1 || o.CopyFromMonth > monthsPerYear) {
		return fmt.Errorf("override %s/%d: copy_from_month %d out of range", o.City, o.Month, o.CopyFromMonth)
	}

	var probe Dream
	for _, col := range o.columns() {
		if _, err := probe.Numeric(col); err != nil {
			return fmt.Errorf("override %s/%d: %w", o.City, o.Month, err)
		}
	}
	return nil
}

func (o Override) columns() []string {
	if len(o.Set) > 0 {
		cols := make([]string, 0, len(o.Set))
		for col := range o.Set {
			cols = append(cols, col)
		}
		slices.Sort(cols)
		return cols
	}
	if len(o.Columns) == 0 {
		return RadianceColumns
	}
	return o.Columns
}

// ApplyOverrides applies the overrides in order, in place, and returns the
// number of row patches made.
func ApplyOverrides(rows []Dream, overrides []Override) (int, error) {
	patched := 0
	for _, o := range overrides {
		if err := o.Validate(); err != nil {
			return patched, err
		}
		values, err := o.values(rows)
		if err != nil {
			return patched, err
		}
		for i := range rows {
			if rows[i].City != o.City || rows[i].Month != o.Month {
				continue
			}
			for col, v := range values {
				var cell *float64
				if v != nil {
					cell = Float(*v)
				}
				if err := rows[i].SetNumeric(col, cell); err != nil {
					return patched, err
				}
			}
			patched++
		}
	}
	return patched, nil
}

// values resolves the column values an override writes.
func (o Override) values(rows []Dream) (map[string]*float64, error) {
	out := make(map[string]*float64)
	if len(o.Set) > 0 {
		for col, v := range o.Set {
			out[col] = Float(v)
		}
		return out, nil
	}

	idx := slices.IndexFunc(rows, func(d Dream) bool {
		return d.City == o.City && d.Month == o.CopyFromMonth
	})
	if idx < 0 {
		return nil, fmt.Errorf("override %s/%d copy from month %d: %w", o.City, o.Month, o.CopyFromMonth, ErrNoSourceRow)
	}
	for _, col := range o.columns() {
		v, err := rows[idx].Numeric(col)
		if err != nil {
			return nil, err
		}
		out[col] = v
	}
	return out, nil
}
