package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dreams.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRows() []domain.Dream {
	return []domain.Dream{
		{
			Date:      time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
			Profile:   domain.Profile{City: "Toronto", Mood: "calm", Keywords: "house, dog"},
			Year:      2025,
			Month:     3,
			YearMonth: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			MeanRad:   domain.Float(61.5),
			DataType:  domain.DataTypeReal,
		},
		{
			Date:      time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC),
			Profile:   domain.Profile{City: "Toronto"},
			Year:      2025,
			Month:     5,
			YearMonth: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			DataType:  domain.DataTypeSynthetic,
		},
	}
}

func TestLoadDreams(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.LoadDreams(ctx, testRows()))

	counts, err := s.CountByDataType(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.DataType]int{domain.DataTypeReal: 1, domain.DataTypeSynthetic: 1}, counts)

	var (
		mood    sql.NullString
		meanRad sql.NullFloat64
		maxRad  sql.NullFloat64
		month   int
	)
	err = s.db.QueryRowContext(ctx, `SELECT mood, mean_rad, max_rad, month FROM dreams WHERE data_type = 'real'`).
		Scan(&mood, &meanRad, &maxRad, &month)
	require.NoError(t, err)
	assert.Equal(t, "calm", mood.String)
	assert.InDelta(t, 61.5, meanRad.Float64, 1e-9)
	assert.False(t, maxRad.Valid)
	assert.Equal(t, 3, month)

	var loadedAt time.Time
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT loaded_at FROM dreams LIMIT 1`).Scan(&loadedAt))
	assert.True(t, loadedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)), "loaded_at %s", loadedAt)
}

func TestLoadDreams_RowWithoutDate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []domain.Dream{{Profile: domain.Profile{City: "Toronto"}, DataType: domain.DataTypeReal}}
	require.NoError(t, s.LoadDreams(ctx, rows))

	var date, yearMonth sql.NullString
	var year, month sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT date, year, month, year_month FROM dreams`).
		Scan(&date, &year, &month, &yearMonth)
	require.NoError(t, err)
	assert.False(t, date.Valid)
	assert.False(t, year.Valid)
	assert.False(t, month.Valid)
	assert.False(t, yearMonth.Valid)
}

func TestLoadDreams_ReplacesPreviousLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LoadDreams(ctx, testRows()))
	require.NoError(t, s.LoadDreams(ctx, testRows()[:1]))

	counts, err := s.CountByDataType(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.DataType]int{domain.DataTypeReal: 1}, counts)
}

func TestLoadDreams_Empty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LoadDreams(ctx, nil))
	counts, err := s.CountByDataType(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLoadDreams_CancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.LoadDreams(ctx, testRows()))
}
