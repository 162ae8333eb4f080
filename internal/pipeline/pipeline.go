package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
	"github.com/couchcryptid/dreamlight-etl/internal/observability"
)

// Source reads stage inputs: the raw datasets and, when a run starts after
// the first stage, the previous stage's checkpoint.
type Source interface {
	ReadArchive(ctx context.Context) (domain.Archive, error)
	ReadFlatDreams(ctx context.Context) ([]domain.FlatDream, error)
	ReadRadiance(ctx context.Context) ([]domain.Radiance, error)
	ReadJoined(ctx context.Context) ([]domain.Dream, error)
}

// Checkpointer writes each stage's output table.
type Checkpointer interface {
	WriteFlatDreams(ctx context.Context, rows []domain.FlatDream) error
	WriteJoined(ctx context.Context, rows []domain.Dream) error
	WriteFull(ctx context.Context, rows []domain.Dream) error
	WriteSummary(ctx context.Context, rows []domain.CityMonthSummary) error
}

// Loader publishes the final table to an external sink.
type Loader interface {
	Name() string
	LoadDreams(ctx context.Context, rows []domain.Dream) error
}

// Options selects stages and tunes augmentation.
type Options struct {
	Stages    []string
	Augment   domain.AugmentParams
	Overrides []domain.Override
	// Summary enables the city/month summary export.
	Summary bool
}

// Report counts what a run produced.
type Report struct {
	Flattened int
	Joined    int
	Unmatched int
	Real      int
	Synthetic int
	Patched   int
	Summaries int
	Generated []domain.MonthCount
}

// Pipeline composes flatten, join and augment, checkpointing each stage.
type Pipeline struct {
	source      Source
	checkpoints Checkpointer
	loaders     []Loader
	rng         domain.Random
	opts        Options
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
}

// New creates a Pipeline. Loaders run in order after the final table is written.
func New(src Source, cp Checkpointer, loaders []Loader, rng domain.Random, opts Options, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	return &Pipeline{
		source:      src,
		checkpoints: cp,
		loaders:     loaders,
		rng:         rng,
		opts:        opts,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
	}
}

// tables carries stage outputs between stages of one run.
type tables struct {
	flat   []domain.FlatDream
	joined []domain.Dream
	full   []domain.Dream
	ran    map[string]bool
}

// Run executes the selected stages, then the summary and sinks when the final
// table was built. It stops at the first error.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	p.logger.Info("pipeline started", "stages", p.opts.Stages)

	var rep Report
	t := &tables{ran: make(map[string]bool)}
	steps := map[string]func(context.Context, *tables, *Report) error{
		config.StageFlatten: p.flatten,
		config.StageJoin:    p.join,
		config.StageAugment: p.augment,
	}

	for _, name := range p.opts.Stages {
		step, ok := steps[name]
		if !ok {
			return rep, fmt.Errorf("unknown stage %q", name)
		}
		if err := p.timed(ctx, name, func(ctx context.Context) error { return step(ctx, t, &rep) }); err != nil {
			return rep, err
		}
		t.ran[name] = true
	}

	if !t.ran[config.StageAugment] {
		p.logger.Info("final table not built, skipping summary and sinks")
	} else if err := p.publish(ctx, t.full, &rep); err != nil {
		return rep, err
	}

	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.logger.Info("pipeline complete",
		"flattened", rep.Flattened,
		"joined", rep.Joined,
		"real", rep.Real,
		"synthetic", rep.Synthetic,
		"patched", rep.Patched,
	)
	return rep, nil
}

// timed runs one stage, recording its duration.
func (p *Pipeline) timed(ctx context.Context, stage string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	start := p.clock.Now()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	elapsed := p.clock.Since(start)
	p.metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	p.logger.Info("stage complete", "stage", stage, "duration", elapsed)
	return nil
}

func (p *Pipeline) publish(ctx context.Context, full []domain.Dream, rep *Report) error {
	if p.opts.Summary {
		err := p.timed(ctx, "summary", func(ctx context.Context) error {
			summaries := domain.Summarize(full, p.opts.Augment.Year)
			if err := p.checkpoints.WriteSummary(ctx, summaries); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			rep.Summaries = len(summaries)
			p.metrics.RowsWritten.WithLabelValues(config.DatasetCitySummary).Add(float64(len(summaries)))
			return nil
		})
		if err != nil {
			return err
		}
	}

	for _, l := range p.loaders {
		err := p.timed(ctx, l.Name(), func(ctx context.Context) error {
			if err := l.LoadDreams(ctx, full); err != nil {
				return fmt.Errorf("load %s: %w", l.Name(), err)
			}
			p.metrics.RowsWritten.WithLabelValues(l.Name()).Add(float64(len(full)))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
