// Command dreamprep flattens the dream journal export, joins it with VIIRS
// night-light radiance, and fills every city's missing months of the target
// year with synthetic rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dreamlight-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/dreamlight-etl/internal/adapter/kafka"
	"github.com/couchcryptid/dreamlight-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
	"github.com/couchcryptid/dreamlight-etl/internal/observability"
	"github.com/couchcryptid/dreamlight-etl/internal/pipeline"
)

func main() {
	schema := flag.Bool("schema", false, "print the JSON Schema of the dream archive and exit")
	flag.Parse()

	if *schema {
		data, err := file.ArchiveSchema()
		if err != nil {
			slog.Error("failed to build archive schema", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	overrides, err := config.LoadOverrides(cfg.OverridesPath)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	defer func() {
		if cfg.MetricsTextfile == "" {
			return
		}
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics textfile write failed", "error", err)
		}
	}()

	var loaders []pipeline.Loader
	if cfg.SQLitePath != "" {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("sqlite close error", "error", err)
			}
		}()
		loaders = append(loaders, db)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	seed := uint64(time.Now().UnixNano())
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}
	logger.Info("random source seeded", "seed", seed)

	if !cfg.HasStage(config.StageAugment) && len(loaders) > 0 {
		logger.Warn("augment stage not selected, sinks will not run", "stages", cfg.Stages)
	}

	params := domain.DefaultAugmentParams()
	params.MinPerMonth = cfg.MinDreamsPerMonth
	params.Year = cfg.SyntheticYear
	params.NoiseStdDev = cfg.NoiseStdDev

	store := file.NewStore(cfg.Datasets)
	p := pipeline.New(
		store,
		store,
		loaders,
		rand.New(rand.NewPCG(seed, seed)),
		pipeline.Options{
			Stages:    cfg.Stages,
			Augment:   params,
			Overrides: overrides,
			Summary:   cfg.Path(config.DatasetCitySummary) != "",
		},
		logger,
		metrics,
		clockwork.NewRealClock(),
	)

	_, err = p.Run(ctx)
	return err
}
