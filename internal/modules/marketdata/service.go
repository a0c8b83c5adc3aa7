package marketdata

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Service registers providers and serves datasets with derived
// statistics.
type Service struct {
	providers map[string]Provider
	log       zerolog.Logger
}

// NewService creates an empty provider registry.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		providers: make(map[string]Provider),
		log:       log.With().Str("module", "marketdata").Logger(),
	}
}

// Register adds a provider under its own name. A later registration
// with the same name replaces the earlier one.
func (s *Service) Register(p Provider) {
	s.providers[p.Name()] = p
	s.log.Debug().Str("provider", p.Name()).Msg("Registered market data provider")
}

// Providers lists registered provider names, sorted.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider returns a registered provider by name.
func (s *Service) Provider(name string) (Provider, bool) {
	p, ok := s.providers[name]
	return p, ok
}

// LoadDataset loads the named provider's series.
func (s *Service) LoadDataset(ctx context.Context, name string) (*Dataset, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	ds, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil || len(ds.Series) == 0 {
		return nil, fmt.Errorf("%w: provider %s returned an empty dataset", ErrNoData, name)
	}
	return ds, nil
}

// LoadWithStatistics loads the named provider's series and derives the
// statistics bundle.
func (s *Service) LoadWithStatistics(ctx context.Context, name string) (*Dataset, *Statistics, error) {
	ds, err := s.LoadDataset(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	stats, err := ComputeStatistics(ds)
	if err != nil {
		return nil, nil, err
	}
	return ds, stats, nil
}
