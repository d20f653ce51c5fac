package greenhouse

import (
	"context"
	"fmt"
	"log/slog"
)

// Service fronts the gateway loader with the records cache.
type Service struct {
	loader   Loader
	store    Store
	sortDesc bool
}

// NewService creates a new Service. store may be nil to disable caching.
func NewService(loader Loader, store Store, sortDesc bool) *Service {
	return &Service{
		loader:   loader,
		store:    store,
		sortDesc: sortDesc,
	}
}

// ListFiles returns the daily file names published by the gateway.
func (s *Service) ListFiles(ctx context.Context) ([]string, error) {
	names, err := s.loader.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if s.sortDesc {
		names = SortDesc(names)
	}
	return names, nil
}

// LoadRecords returns the readings of fileName, from the cache when possible.
// Only non-empty results are cached so an empty file is asked for again.
func (s *Service) LoadRecords(ctx context.Context, fileName string) ([]Reading, error) {
	if s.store != nil {
		if cached, err := s.store.Get(fileName); err == nil {
			slog.Debug("records cache hit", "file", fileName, "count", len(cached))
			return cached, nil
		}
	}

	readings, err := s.loader.LoadRecords(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("load records %s: %w", fileName, err)
	}
	if s.store != nil && len(readings) > 0 {
		s.store.Save(fileName, readings)
	}
	return readings, nil
}

// Chart loads fileName and builds its series and presentation state without
// touching any selection.
func (s *Service) Chart(ctx context.Context, fileName string, density int, dateLayout string) (ChartSeries, PresentationState, error) {
	readings, err := s.LoadRecords(ctx, fileName)
	if err != nil {
		return ChartSeries{}, PresentationState{}, err
	}
	series := BuildChartSeries(readings)
	return series, Present(fileName, series, density, dateLayout), nil
}
