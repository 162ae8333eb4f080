package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

func (p *Pipeline) flatten(ctx context.Context, t *tables, rep *Report) error {
	archive, err := p.source.ReadArchive(ctx)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	p.metrics.RowsRead.WithLabelValues(config.DatasetDreamsJSON).Add(float64(len(archive.Records)))

	t.flat = domain.Flatten(archive)
	rep.Flattened = len(t.flat)

	if err := p.checkpoints.WriteFlatDreams(ctx, t.flat); err != nil {
		return fmt.Errorf("write flat dreams: %w", err)
	}
	p.metrics.RowsWritten.WithLabelValues(config.DatasetDreamsCleaned).Add(float64(len(t.flat)))
	p.logger.Info("dreams flattened", "dreamers", len(archive.Records), "dreams", len(t.flat))
	return nil
}

func (p *Pipeline) join(ctx context.Context, t *tables, rep *Report) error {
	if !t.ran[config.StageFlatten] {
		flat, err := p.source.ReadFlatDreams(ctx)
		if err != nil {
			return fmt.Errorf("read flat dreams: %w", err)
		}
		p.metrics.RowsRead.WithLabelValues(config.DatasetDreamsCleaned).Add(float64(len(flat)))
		t.flat = flat
	}

	radiance, err := p.source.ReadRadiance(ctx)
	if err != nil {
		return fmt.Errorf("read radiance: %w", err)
	}
	p.metrics.RowsRead.WithLabelValues(config.DatasetVIIRS).Add(float64(len(radiance)))

	res, err := domain.Join(t.flat, radiance)
	if err != nil {
		return err
	}
	t.joined = res.Dreams
	rep.Joined = len(res.Dreams)
	rep.Unmatched = res.Unmatched
	p.metrics.UnmatchedJoinRows.Add(float64(res.Unmatched))
	if res.Unmatched > 0 {
		p.logger.Warn("dreams without radiance match", "rows", res.Unmatched)
	}

	if err := p.checkpoints.WriteJoined(ctx, t.joined); err != nil {
		return fmt.Errorf("write joined dreams: %w", err)
	}
	p.metrics.RowsWritten.WithLabelValues(config.DatasetDreamsWithLight).Add(float64(len(t.joined)))
	p.logger.Info("radiance joined", "rows", len(t.joined), "radiance_rows", len(radiance))
	return nil
}

func (p *Pipeline) augment(ctx context.Context, t *tables, rep *Report) error {
	if !t.ran[config.StageJoin] {
		joined, err := p.source.ReadJoined(ctx)
		if err != nil {
			return fmt.Errorf("read joined dreams: %w", err)
		}
		p.metrics.RowsRead.WithLabelValues(config.DatasetDreamsWithLight).Add(float64(len(joined)))
		t.joined = joined
	}

	res, err := domain.NewAugmenter(p.opts.Augment, p.rng).Augment(t.joined)
	if err != nil {
		return err
	}
	if res.NoCity > 0 {
		p.logger.Warn("rows without city kept but not augmented", "rows", res.NoCity)
	}
	for _, g := range res.Generated {
		p.metrics.SyntheticRows.WithLabelValues(g.City).Add(float64(g.Rows))
		p.logger.Debug("synthetic rows generated", "city", g.City, "month", g.Month, "rows", g.Rows)
	}
	rep.Real = res.Real
	rep.Synthetic = res.Synthetic
	rep.Generated = res.Generated

	patched, err := domain.ApplyOverrides(res.Rows, p.opts.Overrides)
	if err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	rep.Patched = patched
	p.metrics.RowsPatched.Add(float64(patched))
	t.full = res.Rows

	if err := p.checkpoints.WriteFull(ctx, t.full); err != nil {
		return fmt.Errorf("write full dreams: %w", err)
	}
	p.metrics.RowsWritten.WithLabelValues(config.DatasetDreamsFull).Add(float64(len(t.full)))
	p.logger.Info("dreams augmented", "real", res.Real, "synthetic", res.Synthetic, "patched", patched)
	return nil
}
