package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
	"github.com/couchcryptid/dreamlight-etl/internal/pipeline"
)

var (
	_ pipeline.Source       = (*Store)(nil)
	_ pipeline.Checkpointer = (*Store)(nil)
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestReadArchive(t *testing.T) {
	path := writeTestFile(t, "dreams.json", `{"records":[{"dreamer":{"city":"Toronto"},"dreams":[{"date":"2025-01-02","affect":{"emotions_top3":[["awe",0.4]]}}]}]}`)

	archive, err := ReadArchive(path)
	require.NoError(t, err)
	require.Len(t, archive.Records, 1)
	assert.Equal(t, "Toronto", archive.Records[0].Dreamer.City.String())
	require.Len(t, archive.Records[0].Dreams, 1)
	assert.Equal(t, "awe:0.4", archive.Records[0].Dreams[0].Affect.EmotionsTop3[0].String())
}

func TestReadArchive_Invalid(t *testing.T) {
	_, err := ReadArchive(writeTestFile(t, "dreams.json", `{"records":[{"dreamer":{"city":{}}}]}`))
	assert.ErrorContains(t, err, "decode archive")

	_, err = ReadArchive(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArchiveSchema(t *testing.T) {
	data, err := ArchiveSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "Dream journal archive", schema["title"])
	assert.Contains(t, string(data), `"records"`)
	assert.Contains(t, string(data), `"emotions_top3"`)
	assert.Contains(t, string(data), `"oneOf"`)
}

func TestFlatDreams_RoundTrip(t *testing.T) {
	rows := []domain.FlatDream{
		{Date: "2025-03-04", Profile: domain.Profile{
			CountryCode: "CA", Admin1: "Ontario", City: "Toronto", Gender: "F",
			Type: "nightmare", Recurring: "true", Keywords: "house, dog",
			SentimentNeg: domain.Float(0.125), ValenceMean: domain.Float(-0.5),
			EmotionsTop3: "fear:0.81, joy:0.1",
		}},
		{Date: "2025-03-05 23:10:00", Profile: domain.Profile{City: "Ottawa"}},
	}

	path := filepath.Join(t.TempDir(), "cleaned", "dreams_cleaned.csv")
	require.NoError(t, WriteFlatDreams(path, rows))

	lines := readLines(t, path)
	assert.Equal(t, strings.Join(FlatColumns, ","), lines[0])
	assert.Equal(t, `2025-03-04,CA,Ontario,Toronto,F,nightmare,,,,,true,,"house, dog",0.125,,,-0.5,,,"fear:0.81, joy:0.1"`, lines[1])

	got, err := ReadFlatDreams(path)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFlatDreams_ColumnsByName(t *testing.T) {
	path := writeTestFile(t, "dreams.csv", "city,extra,date,mean_rad\nToronto,x,2025-01-01,3\n")

	got, err := ReadFlatDreams(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.FlatDream{{Date: "2025-01-01", Profile: domain.Profile{City: "Toronto"}}}, got)
}

func TestReadFlatDreams_MissingColumn(t *testing.T) {
	_, err := ReadFlatDreams(writeTestFile(t, "dreams.csv", "date,admin1\n2025-01-01,ON\n"))
	assert.ErrorContains(t, err, `missing column "city"`)
}

func TestReadRadiance(t *testing.T) {
	path := writeTestFile(t, "viirs.csv", "city,month,mean_rad,max_rad,sum_rad,year\nToronto,2024-07,61.5,410,220000,ignored\nOttawa,2025-01,,,,\n")

	got, err := ReadRadiance(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Radiance{
		{City: "Toronto", Year: 2024, Month: 7, MeanRad: domain.Float(61.5), MaxRad: domain.Float(410), SumRad: domain.Float(220000)},
		{City: "Ottawa", Year: 2025, Month: 1},
	}, got)
}

func TestReadRadiance_BadMonth(t *testing.T) {
	_, err := ReadRadiance(writeTestFile(t, "viirs.csv", "city,month\nToronto,July\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestDreams_RoundTrip(t *testing.T) {
	rows := []domain.Dream{
		{
			Date:      time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
			Profile:   domain.Profile{City: "Toronto", Mood: "calm", ArousalMean: domain.Float(0.3)},
			Year:      2025,
			Month:     3,
			YearMonth: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			MeanRad:   domain.Float(61.5),
			DataType:  domain.DataTypeReal,
		},
		{
			Date:      time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC),
			Profile:   domain.Profile{City: "Toronto"},
			Year:      2025,
			Month:     5,
			YearMonth: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			MeanRad:   domain.Float(60.01234),
			MaxRad:    domain.Float(409.99),
			SumRad:    domain.Float(219999.5),
			DataType:  domain.DataTypeSynthetic,
		},
	}

	path := filepath.Join(t.TempDir(), "full.csv")
	require.NoError(t, WriteDreams(path, rows, FullColumns))

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], ",2025,5,60.01234,409.99,219999.5,synthetic,2025-05-01"), lines[2])

	got, err := ReadDreams(path)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDreams_JoinedLayout(t *testing.T) {
	rows := []domain.Dream{{
		Date:    time.Date(2025, 3, 4, 21, 30, 0, 0, time.UTC),
		Profile: domain.Profile{City: "Toronto"},
		Year:    2025,
		Month:   3,
	}}

	path := filepath.Join(t.TempDir(), "joined.csv")
	require.NoError(t, WriteDreams(path, rows, JoinedColumns))

	lines := readLines(t, path)
	assert.True(t, strings.HasSuffix(lines[0], "emotions_top3,year,month,mean_rad,max_rad,sum_rad"))
	assert.True(t, strings.HasPrefix(lines[1], "2025-03-04 21:30:00,"))
	assert.True(t, strings.HasSuffix(lines[1], ",2025,3,,,"))
}

func TestReadDreams_PandasFloats(t *testing.T) {
	path := writeTestFile(t, "joined.csv", "date,city,year,month,mean_rad\n2025-03-04,Toronto,2025.0,3.0,NaN\n")

	got, err := ReadDreams(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2025, got[0].Year)
	assert.Equal(t, 3, got[0].Month)
	assert.Nil(t, got[0].MeanRad)
}

func TestDreams_EmptyDate(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		row     domain.Dream
		want    string
	}{
		{
			name:    "joined",
			columns: JoinedColumns,
			row:     domain.Dream{Profile: domain.Profile{City: "Toronto", Type: "x"}},
			want:    ",,,,,",
		},
		{
			name:    "full",
			columns: FullColumns,
			row:     domain.Dream{Profile: domain.Profile{City: "Toronto", Type: "x"}, DataType: domain.DataTypeReal},
			want:    ",,,,,real,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dreams.csv")
			require.NoError(t, WriteDreams(path, []domain.Dream{tt.row}, tt.columns))

			lines := readLines(t, path)
			require.Len(t, lines, 2)
			assert.True(t, strings.HasPrefix(lines[1], ",,,Toronto,"), lines[1])
			assert.True(t, strings.HasSuffix(lines[1], tt.want), lines[1])

			got, err := ReadDreams(path)
			require.NoError(t, err)
			if diff := cmp.Diff([]domain.Dream{tt.row}, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadDreams_BadDate(t *testing.T) {
	_, err := ReadDreams(writeTestFile(t, "joined.csv", "date,city\nsoon,Toronto\n"))
	assert.ErrorContains(t, err, "line 2 column date")
}

func TestWriteSummary(t *testing.T) {
	rows := []domain.CityMonthSummary{
		{City: "Toronto", Month: 3, TotalDreams: 2, MeanRad: domain.Float(3),
			Emotions: []domain.EmotionCount{{Emotion: "fear", Count: 2}, {Emotion: "joy", Count: 1}}},
	}

	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummary(path, rows))

	assert.Equal(t, []string{
		strings.Join(SummaryColumns, ","),
		"Toronto,3,2,3,fear,2,joy,1,,",
	}, readLines(t, path))
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(map[string]string{
		config.DatasetDreamsCleaned:   filepath.Join(dir, "cleaned.csv"),
		config.DatasetDreamsWithLight: filepath.Join(dir, "joined.csv"),
	})
	ctx := context.Background()

	flat := []domain.FlatDream{{Date: "2025-01-01", Profile: domain.Profile{City: "Toronto"}}}
	require.NoError(t, store.WriteFlatDreams(ctx, flat))
	got, err := store.ReadFlatDreams(ctx)
	require.NoError(t, err)
	assert.Equal(t, flat, got)

	joined := []domain.Dream{{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Profile: domain.Profile{City: "Toronto"}, Year: 2025, Month: 1}}
	require.NoError(t, store.WriteJoined(ctx, joined))
	back, err := store.ReadJoined(ctx)
	require.NoError(t, err)
	assert.Equal(t, joined, back)

	// Summary is optional; the full table is not.
	require.NoError(t, store.WriteSummary(ctx, nil))
	assert.ErrorContains(t, store.WriteFull(ctx, nil), config.DatasetDreamsFull)
}
