package file

import (
	"context"
	"errors"

	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// Store reads and writes the stage files named in the dataset map. It
// implements pipeline.Source and pipeline.Checkpointer.
type Store struct {
	paths map[string]string
}

// NewStore creates a Store over a logical dataset name to path mapping.
func NewStore(paths map[string]string) *Store {
	return &Store{paths: paths}
}

func (s *Store) path(dataset string) (string, error) {
	p := s.paths[dataset]
	if p == "" {
		return "", errors.New("no path configured for dataset " + dataset)
	}
	return p, nil
}

// ReadArchive decodes the dreams JSON export.
func (s *Store) ReadArchive(_ context.Context) (domain.Archive, error) {
	p, err := s.path(config.DatasetDreamsJSON)
	if err != nil {
		return domain.Archive{}, err
	}
	return ReadArchive(p)
}

// ReadFlatDreams reads the flatten checkpoint.
func (s *Store) ReadFlatDreams(_ context.Context) ([]domain.FlatDream, error) {
	p, err := s.path(config.DatasetDreamsCleaned)
	if err != nil {
		return nil, err
	}
	return ReadFlatDreams(p)
}

// ReadRadiance reads the VIIRS table.
func (s *Store) ReadRadiance(_ context.Context) ([]domain.Radiance, error) {
	p, err := s.path(config.DatasetVIIRS)
	if err != nil {
		return nil, err
	}
	return ReadRadiance(p)
}

// ReadJoined reads the join checkpoint.
func (s *Store) ReadJoined(_ context.Context) ([]domain.Dream, error) {
	p, err := s.path(config.DatasetDreamsWithLight)
	if err != nil {
		return nil, err
	}
	return ReadDreams(p)
}

// WriteFlatDreams writes the flatten checkpoint.
func (s *Store) WriteFlatDreams(_ context.Context, rows []domain.FlatDream) error {
	p, err := s.path(config.DatasetDreamsCleaned)
	if err != nil {
		return err
	}
	return WriteFlatDreams(p, rows)
}

// WriteJoined writes the join checkpoint in the joined layout.
func (s *Store) WriteJoined(_ context.Context, rows []domain.Dream) error {
	p, err := s.path(config.DatasetDreamsWithLight)
	if err != nil {
		return err
	}
	return WriteDreams(p, rows, JoinedColumns)
}

// WriteFull writes the final table in the full layout.
func (s *Store) WriteFull(_ context.Context, rows []domain.Dream) error {
	p, err := s.path(config.DatasetDreamsFull)
	if err != nil {
		return err
	}
	return WriteDreams(p, rows, FullColumns)
}

// WriteSummary writes the city/month summary. It is a no-op when no summary
// path is configured.
func (s *Store) WriteSummary(_ context.Context, rows []domain.CityMonthSummary) error {
	p := s.paths[config.DatasetCitySummary]
	if p == "" {
		return nil
	}
	return WriteSummary(p, rows)
}
