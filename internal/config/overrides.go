package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// overridesFile is the YAML layout of a patch list.
type overridesFile struct {
	Overrides []overrideEntry `yaml:"overrides"`
}

type overrideEntry struct {
	City          string             `yaml:"city"`
	Month         int                `yaml:"month"`
	CopyFromMonth int                `yaml:"copy_from_month"`
	Columns       []string           `yaml:"columns"`
	Set           map[string]float64 `yaml:"set"`
}

// LoadOverrides reads the patch list applied after augmentation. An empty path
// returns the built-in list.
func LoadOverrides(path string) ([]domain.Override, error) {
	if path == "" {
		return domain.DefaultOverrides(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}

	out := make([]domain.Override, 0, len(file.Overrides))
	for i, e := range file.Overrides {
		o := domain.Override{
			City:          e.City,
			Month:         e.Month,
			CopyFromMonth: e.CopyFromMonth,
			Columns:       e.Columns,
			Set:           e.Set,
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("overrides entry %d: %w", i, err)
		}
		out = append(out, o)
	}
	return out, nil
}
