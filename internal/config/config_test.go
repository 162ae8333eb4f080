package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw/dreams.json", cfg.Path(DatasetDreamsJSON))
	assert.Equal(t, "data/cleaned/dreams_cleaned.csv", cfg.Path(DatasetDreamsCleaned))
	assert.Equal(t, "data/raw/VIIRS_data.csv", cfg.Path(DatasetVIIRS))
	assert.Equal(t, "data/cleaned/dreams_with_light.csv", cfg.Path(DatasetDreamsWithLight))
	assert.Equal(t, "data/cleaned/dreams_with_light_full_2025.csv", cfg.Path(DatasetDreamsFull))
	assert.Empty(t, cfg.Path(DatasetCitySummary))
	assert.Equal(t, []string{StageFlatten, StageJoin, StageAugment}, cfg.Stages)
	assert.Equal(t, 20, cfg.MinDreamsPerMonth)
	assert.Equal(t, 2025, cfg.SyntheticYear)
	assert.InDelta(t, 0.02, cfg.NoiseStdDev, 1e-12)
	assert.Nil(t, cfg.RandomSeed)
	assert.Empty(t, cfg.OverridesPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Empty(t, cfg.SQLitePath)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "dreams-with-light", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DREAMS_JSON_PATH", "in/dreams.json")
	t.Setenv("VIIRS_PATH", "in/viirs.csv")
	t.Setenv("DREAMS_FULL_PATH", "out/full.csv")
	t.Setenv("CITY_SUMMARY_PATH", "out/summary.csv")
	t.Setenv("PIPELINE_STAGES", "join, augment")
	t.Setenv("MIN_DREAMS_PER_MONTH", "5")
	t.Setenv("SYNTHETIC_YEAR", "2024")
	t.Setenv("NOISE_STDDEV", "0")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("OVERRIDES_PATH", "overrides.yaml")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_TEXTFILE", "out/dreamprep.prom")
	t.Setenv("SQLITE_PATH", "out/dreams.db")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("BATCH_SIZE", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "in/dreams.json", cfg.Path(DatasetDreamsJSON))
	assert.Equal(t, "in/viirs.csv", cfg.Path(DatasetVIIRS))
	assert.Equal(t, "out/full.csv", cfg.Path(DatasetDreamsFull))
	assert.Equal(t, "out/summary.csv", cfg.Path(DatasetCitySummary))
	assert.Equal(t, []string{StageJoin, StageAugment}, cfg.Stages)
	assert.False(t, cfg.HasStage(StageFlatten))
	assert.True(t, cfg.HasStage(StageAugment))
	assert.Equal(t, 5, cfg.MinDreamsPerMonth)
	assert.Equal(t, 2024, cfg.SyntheticYear)
	assert.Zero(t, cfg.NoiseStdDev)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, uint64(42), *cfg.RandomSeed)
	assert.Equal(t, "overrides.yaml", cfg.OverridesPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "out/dreamprep.prom", cfg.MetricsTextfile)
	assert.Equal(t, "out/dreams.db", cfg.SQLitePath)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, 100, cfg.BatchSize)
}

func TestLoad_InvalidStages(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"unknown stage", "flatten,clean"},
		{"out of order", "augment,join"},
		{"duplicate", "join,join"},
		{"empty list", " , "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PIPELINE_STAGES", tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PIPELINE_STAGES")
		})
	}
}

func TestLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MIN_DREAMS_PER_MONTH", "0"},
		{"MIN_DREAMS_PER_MONTH", "many"},
		{"SYNTHETIC_YEAR", "-1"},
		{"NOISE_STDDEV", "-0.5"},
		{"NOISE_STDDEV", "loud"},
		{"RANDOM_SEED", "-3"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{testBroker}, cfg.KafkaBrokers)
}
