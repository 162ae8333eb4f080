package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// record is one data row keyed by header name.
type record struct {
	line   int
	fields map[string]string
}

// table is a CSV file loaded into memory with its header order.
type table struct {
	header  []string
	records []record
}

// readTable loads a comma-delimited file with a header row and checks that
// the required columns are present.
func readTable(path string, required ...string) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return table{}, fmt.Errorf("parse %s: missing header row", path)
	}

	t := table{header: all[0]}
	seen := make(map[string]bool, len(t.header))
	for _, h := range t.header {
		seen[h] = true
	}
	for _, col := range required {
		if !seen[col] {
			return table{}, fmt.Errorf("parse %s: missing column %q", path, col)
		}
	}

	for i, row := range all[1:] {
		fields := make(map[string]string, len(t.header))
		for j, h := range t.header {
			if j < len(row) {
				fields[h] = row[j]
			}
		}
		t.records = append(t.records, record{line: i + 2, fields: fields})
	}
	return t, nil
}

// writeTable writes header and rows to path, creating parent directories.
func writeTable(path string, header []string, n int, row func(i int) ([]string, error)) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return encodeTable(f, header, n, row)
}

func encodeTable(w io.Writer, header []string, n int, row func(i int) ([]string, error)) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range n {
		cells, err := row(i)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFlatDreams reads the flattened dream table.
func ReadFlatDreams(path string) ([]domain.FlatDream, error) {
	t, err := readTable(path, "date", "city")
	if err != nil {
		return nil, err
	}
	rows := make([]domain.FlatDream, 0, len(t.records))
	for _, rec := range t.records {
		var fd domain.FlatDream
		for _, col := range t.header {
			if err := setFlatCell(&fd, col, rec.fields[col]); err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", path, rec.line, col, err)
			}
		}
		rows = append(rows, fd)
	}
	return rows, nil
}

// WriteFlatDreams writes the flattened dream table.
func WriteFlatDreams(path string, rows []domain.FlatDream) error {
	return writeTable(path, FlatColumns, len(rows), func(i int) ([]string, error) {
		cells := make([]string, len(FlatColumns))
		for j, col := range FlatColumns {
			v, err := flatCell(&rows[i], col)
			if err != nil {
				return nil, err
			}
			cells[j] = v
		}
		return cells, nil
	})
}

// ReadRadiance reads the VIIRS table. The month column holds "YYYY-MM".
func ReadRadiance(path string) ([]domain.Radiance, error) {
	t, err := readTable(path, "city", "month")
	if err != nil {
		return nil, err
	}
	rows := make([]domain.Radiance, 0, len(t.records))
	for _, rec := range t.records {
		year, month, err := domain.ParseYearMonth(rec.fields["month"])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, rec.line, err)
		}
		r := domain.Radiance{City: rec.fields["city"], Year: year, Month: month}
		for col, dst := range map[string]**float64{"mean_rad": &r.MeanRad, "max_rad": &r.MaxRad, "sum_rad": &r.SumRad} {
			v, err := parseFloat(rec.fields[col])
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", path, rec.line, col, err)
			}
			*dst = v
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// ReadDreams reads a joined or final dream table.
func ReadDreams(path string) ([]domain.Dream, error) {
	t, err := readTable(path, "date", "city")
	if err != nil {
		return nil, err
	}
	rows := make([]domain.Dream, 0, len(t.records))
	for _, rec := range t.records {
		var d domain.Dream
		for _, col := range t.header {
			if err := setDreamCell(&d, col, rec.fields[col]); err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", path, rec.line, col, err)
			}
		}
		rows = append(rows, d)
	}
	return rows, nil
}

// WriteDreams writes dream rows with the given column layout.
func WriteDreams(path string, rows []domain.Dream, columns []string) error {
	return writeTable(path, columns, len(rows), func(i int) ([]string, error) {
		cells := make([]string, len(columns))
		for j, col := range columns {
			v, err := dreamCell(&rows[i], col)
			if err != nil {
				return nil, err
			}
			cells[j] = v
		}
		return cells, nil
	})
}

// SummaryColumns is the layout of the city/month summary file.
var SummaryColumns = []string{
	"city", "month", "total_dreams", "mean_rad",
	"emotion_1", "count_1", "emotion_2", "count_2", "emotion_3", "count_3",
}

// WriteSummary writes the city/month summary. Missing emotion slots are empty.
func WriteSummary(path string, rows []domain.CityMonthSummary) error {
	return writeTable(path, SummaryColumns, len(rows), func(i int) ([]string, error) {
		s := rows[i]
		cells := []string{s.City, strconv.Itoa(s.Month), strconv.Itoa(s.TotalDreams), formatFloat(s.MeanRad)}
		for slot := range 3 {
			if slot < len(s.Emotions) {
				cells = append(cells, s.Emotions[slot].Emotion, strconv.Itoa(s.Emotions[slot].Count))
				continue
			}
			cells = append(cells, "", "")
		}
		return cells, nil
	})
}

