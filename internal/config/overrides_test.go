package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOverrides_Default(t *testing.T) {
	got, err := LoadOverrides("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultOverrides(), got)
}

func TestLoadOverrides_File(t *testing.T) {
	path := writeFile(t, `
overrides:
  - city: Toronto
    month: 4
    copy_from_month: 3
  - city: Ottawa
    month: 2
    copy_from_month: 1
    columns: [mean_rad]
  - city: Mississauga
    month: 1
    set:
      mean_rad: 44.621985
      sum_rad: 72063.10586
`)

	got, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Override{
		{City: "Toronto", Month: 4, CopyFromMonth: 3},
		{City: "Ottawa", Month: 2, CopyFromMonth: 1, Columns: []string{"mean_rad"}},
		{City: "Mississauga", Month: 1, Set: map[string]float64{"mean_rad": 44.621985, "sum_rad": 72063.10586}},
	}, got)
}

func TestLoadOverrides_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "overrides: [", "parse overrides"},
		{"no action", "overrides:\n  - city: Toronto\n    month: 4\n", "overrides entry 0"},
		{"unknown column", "overrides:\n  - city: Toronto\n    month: 1\n    set: {city: 1}\n", "unknown column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOverrides(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read overrides")
}
