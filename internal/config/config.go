package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Logical dataset names. Each maps to a file path in Config.Datasets.
const (
	DatasetDreamsJSON      = "dreams_json"
	DatasetDreamsCleaned   = "dreams_cleaned"
	DatasetVIIRS           = "viirs"
	DatasetDreamsWithLight = "dreams_with_light"
	DatasetDreamsFull      = "dreams_full"
	DatasetCitySummary     = "city_summary"
)

// Pipeline stage names, in execution order.
const (
	StageFlatten = "flatten"
	StageJoin    = "join"
	StageAugment = "augment"
)

// Stages lists every stage in execution order.
var Stages = []string{StageFlatten, StageJoin, StageAugment}

// Config holds all run settings, populated from environment variables.
type Config struct {
	// Datasets maps logical dataset names to file paths. An empty path
	// disables an optional output.
	Datasets map[string]string
	Stages   []string

	MinDreamsPerMonth int
	SyntheticYear     int
	NoiseStdDev       float64
	// RandomSeed is nil when the run should be time seeded.
	RandomSeed    *uint64
	OverridesPath string

	LogLevel        string
	LogFormat       string
	MetricsTextfile string

	SQLitePath string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
	BatchSize    int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	stages, err := parseStages(sharedcfg.EnvOrDefault("PIPELINE_STAGES", strings.Join(Stages, ",")))
	if err != nil {
		return nil, err
	}

	minPerMonth, err := parsePositiveInt("MIN_DREAMS_PER_MONTH", 20)
	if err != nil {
		return nil, err
	}
	year, err := parsePositiveInt("SYNTHETIC_YEAR", 2025)
	if err != nil {
		return nil, err
	}

	noise, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("NOISE_STDDEV", "0.02"), 64)
	if err != nil || noise < 0 {
		return nil, errors.New("invalid NOISE_STDDEV")
	}

	var seed *uint64
	if s := os.Getenv("RANDOM_SEED"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.New("invalid RANDOM_SEED")
		}
		seed = &v
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if s := os.Getenv("KAFKA_BROKERS"); s != "" {
		brokers = sharedcfg.ParseBrokers(s)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		Datasets: map[string]string{
			DatasetDreamsJSON:      sharedcfg.EnvOrDefault("DREAMS_JSON_PATH", "data/raw/dreams.json"),
			DatasetDreamsCleaned:   sharedcfg.EnvOrDefault("DREAMS_CLEANED_PATH", "data/cleaned/dreams_cleaned.csv"),
			DatasetVIIRS:           sharedcfg.EnvOrDefault("VIIRS_PATH", "data/raw/VIIRS_data.csv"),
			DatasetDreamsWithLight: sharedcfg.EnvOrDefault("DREAMS_WITH_LIGHT_PATH", "data/cleaned/dreams_with_light.csv"),
			DatasetDreamsFull:      sharedcfg.EnvOrDefault("DREAMS_FULL_PATH", "data/cleaned/dreams_with_light_full_2025.csv"),
			DatasetCitySummary:     os.Getenv("CITY_SUMMARY_PATH"),
		},
		Stages:            stages,
		MinDreamsPerMonth: minPerMonth,
		SyntheticYear:     year,
		NoiseStdDev:       noise,
		RandomSeed:        seed,
		OverridesPath:     os.Getenv("OVERRIDES_PATH"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile:   os.Getenv("METRICS_TEXTFILE"),
		SQLitePath:        os.Getenv("SQLITE_PATH"),
		KafkaBrokers:      brokers,
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "dreams-with-light"),
		KafkaEnabled:      kafkaEnabled,
		BatchSize:         batchSize,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// Path returns the configured path of a logical dataset.
func (c *Config) Path(dataset string) string {
	return c.Datasets[dataset]
}

// HasStage reports whether the named stage is selected.
func (c *Config) HasStage(stage string) bool {
	return slices.Contains(c.Stages, stage)
}

// parseStages validates a comma-separated stage list. Stages must be known,
// unique and in execution order.
func parseStages(s string) ([]string, error) {
	var stages []string
	last := -1
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		idx := slices.Index(Stages, name)
		if idx < 0 {
			return nil, fmt.Errorf("invalid PIPELINE_STAGES: unknown stage %q", name)
		}
		if idx <= last {
			return nil, fmt.Errorf("invalid PIPELINE_STAGES: stage %q out of order", name)
		}
		last = idx
		stages = append(stages, name)
	}
	if len(stages) == 0 {
		return nil, errors.New("PIPELINE_STAGES is required")
	}
	return stages, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
