// Command validate checks a final dream table against the joined table it was
// built from. It verifies row accounting, synthetic row placement, and that
// the radiance patch list holds.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -joined data/cleaned/dreams_with_light.csv \
//	  -full data/cleaned/dreams_with_light_full_2025.csv \
//	  -overrides overrides.yaml
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/dreamlight-etl/internal/adapter/file"
	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	joinedPath := flag.String("joined", "data/cleaned/dreams_with_light.csv", "path to the joined dream table")
	fullPath := flag.String("full", "data/cleaned/dreams_with_light_full_2025.csv", "path to the final dream table")
	overridesPath := flag.String("overrides", "", "patch list YAML (built-in list when empty)")
	year := flag.Int("year", 2025, "target year of the synthetic rows")
	flag.Parse()

	if code := run(*joinedPath, *fullPath, *overridesPath, *year); code != 0 {
		os.Exit(code)
	}
}

func run(joinedPath, fullPath, overridesPath string, year int) int {
	fmt.Println("=== Dream Table Integrity Validation ===")
	fmt.Println()

	joined, err := file.ReadDreams(joinedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load joined table: %v\n", err)
		return 1
	}
	full, err := file.ReadDreams(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load final table: %v\n", err)
		return 1
	}
	overrides, err := config.LoadOverrides(overridesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load overrides: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateAccounting(joined, full),
		validateSynthetic(joined, full, year),
		validateOverrides(full, overrides),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d joined, %d final\n", len(joined), len(full))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: row accounting ──

func validateAccounting(joined, full []domain.Dream) *phase {
	p := &phase{name: "Phase 1: Row Accounting"}

	realRows, synthetic := 0, 0
	for i, r := range full {
		switch r.DataType {
		case domain.DataTypeReal:
			realRows++
		case domain.DataTypeSynthetic:
			synthetic++
		default:
			p.errorf("row %d: data_type %q", i, r.DataType)
		}
	}
	if realRows != len(joined) {
		p.errorf("real rows: got %d, want %d (joined table)", realRows, len(joined))
	}
	if len(full) != len(joined)+synthetic {
		p.errorf("final rows: got %d, want %d joined + %d synthetic", len(full), len(joined), synthetic)
	}
	if !slices.IsSortedFunc(full, func(a, b domain.Dream) int { return a.Date.Compare(b.Date) }) {
		p.errorf("final table is not sorted by date")
	}

	fmt.Printf("  Phase 1: %d real, %d synthetic\n", realRows, synthetic)
	return p
}

// ── Phase 2: synthetic placement ──

type cityMonth struct {
	city  string
	month int
}

func validateSynthetic(joined, full []domain.Dream, year int) *phase {
	p := &phase{name: "Phase 2: Synthetic Row Placement"}

	realMonths := make(map[cityMonth]bool)
	for _, r := range joined {
		if r.HasDate() {
			realMonths[cityMonth{r.City, int(r.Date.Month())}] = true
		}
	}

	checked := 0
	for i, r := range full {
		if r.DataType != domain.DataTypeSynthetic {
			continue
		}
		checked++
		if r.City == "" {
			p.errorf("row %d: synthetic row without city", i)
		}
		if r.Date.Year() != year || r.Year != year {
			p.errorf("row %d (%s): year %d/%d, want %d", i, r.City, r.Date.Year(), r.Year, year)
		}
		if int(r.Date.Month()) != r.Month {
			p.errorf("row %d (%s): month column %d disagrees with date %s", i, r.City, r.Month, r.Date.Format("2006-01-02"))
		}
		if d := r.Date.Day(); d < 1 || d > 28 {
			p.errorf("row %d (%s): day %d outside 1-28", i, r.City, d)
		}
		if realMonths[cityMonth{r.City, r.Month}] {
			p.errorf("row %d (%s): month %d already has real rows", i, r.City, r.Month)
		}
	}

	fmt.Printf("  Phase 2: %d synthetic rows checked\n", checked)
	return p
}

// ── Phase 3: patch list ──

const patchTolerance = 1e-9

func validateOverrides(full []domain.Dream, overrides []domain.Override) *phase {
	p := &phase{name: "Phase 3: Radiance Patch List"}

	// Later patches win where two target the same rows. A copy is only
	// checkable while no later patch rewrites its source month.
	for oi, o := range overrides {
		later := overrides[oi+1:]
		if writesMonth(later, o.City, o.Month) {
			continue
		}
		if len(o.Set) == 0 && writesMonth(later, o.City, o.CopyFromMonth) {
			fmt.Printf("  Phase 3: %s/%d skipped, month %d is patched later\n", o.City, o.Month, o.CopyFromMonth)
			continue
		}

		want := o.Set
		if len(want) == 0 {
			idx := slices.IndexFunc(full, func(d domain.Dream) bool {
				return d.City == o.City && d.Month == o.CopyFromMonth
			})
			if idx < 0 {
				p.errorf("%s/%d: no month %d row to copy from", o.City, o.Month, o.CopyFromMonth)
				continue
			}
			want = numericValues(&full[idx], copyColumns(o))
		}

		for i := range full {
			r := &full[i]
			if r.City != o.City || r.Month != o.Month {
				continue
			}
			for col, v := range want {
				got, err := r.Numeric(col)
				if err != nil {
					p.errorf("%s/%d: %v", o.City, o.Month, err)
					continue
				}
				if !sameValue(got, v) {
					p.errorf("row %d (%s/%d): %s = %s, want %v", i, o.City, o.Month, col, describe(got), v)
				}
			}
		}
	}

	fmt.Printf("  Phase 3: %d patches checked\n", len(overrides))
	return p
}

func writesMonth(overrides []domain.Override, city string, month int) bool {
	return slices.ContainsFunc(overrides, func(o domain.Override) bool {
		return o.City == city && o.Month == month
	})
}

func copyColumns(o domain.Override) []string {
	if len(o.Columns) == 0 {
		return domain.RadianceColumns
	}
	return o.Columns
}

// numericValues reads cols from d; null cells are NaN.
func numericValues(d *domain.Dream, cols []string) map[string]float64 {
	out := make(map[string]float64, len(cols))
	for _, col := range cols {
		v, err := d.Numeric(col)
		if err != nil || v == nil {
			out[col] = math.NaN()
			continue
		}
		out[col] = *v
	}
	return out
}

func sameValue(got *float64, want float64) bool {
	if got == nil {
		return math.IsNaN(want)
	}
	return math.Abs(*got-want) <= patchTolerance
}

func describe(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(*v)
}
