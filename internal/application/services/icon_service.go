package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
)

// IconService ensures each formula that lacks a cached icon gets exactly
// one outstanding generation request. The cache is keyed by formula name,
// so regenerating the same name reuses the cached icon and two
// differently-named formulas never share one.
type IconService struct {
	provider providers.IconProvider
	cache    providers.CacheProvider

	mu         sync.Mutex
	generating map[string]struct{}
}

// NewIconService creates a new icon coordinator.
func NewIconService(provider providers.IconProvider, cache providers.CacheProvider) *IconService {
	return &IconService{
		provider:   provider,
		cache:      cache,
		generating: make(map[string]struct{}),
	}
}

type iconOutcome struct {
	name    string
	dataURL string
	ok      bool
}

// EnsureIcons requests one icon per formula whose name is neither cached
// nor already in flight. The generating set is updated before any request
// starts, so a re-entrant call for the same batch issues nothing. All
// requests run concurrently and the batch finalizes only after every one
// has settled; per-request failures are logged and mapped to "no icon"
// without aborting siblings. Returns the icons generated by this call.
func (s *IconService) EnsureIcons(ctx context.Context, formulas []*entities.Formula) map[string]string {
	pending := s.claim(ctx, formulas)
	if len(pending) == 0 {
		return nil
	}

	outcomes := make([]iconOutcome, len(pending))
	var wg sync.WaitGroup
	for i, name := range pending {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			dataURL, err := s.provider.GenerateIcon(ctx, name)
			if err != nil {
				log.Warn().Err(err).Str("formula", name).Msg("icon generation failed")
				outcomes[i] = iconOutcome{name: name}
				return
			}
			outcomes[i] = iconOutcome{name: name, dataURL: dataURL, ok: true}
		}(i, name)
	}
	wg.Wait()

	return s.settle(ctx, pending, outcomes)
}

// claim filters the batch to names that need generation and marks them as
// in flight. The mark happens synchronously, before any request is issued.
func (s *IconService) claim(ctx context.Context, formulas []*entities.Formula) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []string
	seen := make(map[string]struct{})
	for _, f := range formulas {
		name := f.Name
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if _, inFlight := s.generating[name]; inFlight {
			continue
		}
		cached, err := s.cache.Exists(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("formula", name).Msg("icon cache lookup failed")
			continue
		}
		if cached {
			continue
		}

		s.generating[name] = struct{}{}
		pending = append(pending, name)
	}
	return pending
}

// settle merges every success into the cache and removes the whole batch
// from the generating set regardless of per-request outcome.
func (s *IconService) settle(ctx context.Context, pending []string, outcomes []iconOutcome) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]string)
	for _, outcome := range outcomes {
		if !outcome.ok {
			continue
		}
		if err := s.cache.Set(ctx, outcome.name, []byte(outcome.dataURL)); err != nil {
			log.Warn().Err(err).Str("formula", outcome.name).Msg("icon cache write failed")
			continue
		}
		merged[outcome.name] = outcome.dataURL
	}
	for _, name := range pending {
		delete(s.generating, name)
	}

	if len(merged) > 0 {
		log.Debug().Int("generated", len(merged)).Int("requested", len(pending)).Msg("icon batch settled")
	}
	return merged
}

// Icon returns the cached icon for a formula name, or "" when absent.
func (s *IconService) Icon(ctx context.Context, name string) string {
	value, err := s.cache.Get(ctx, name)
	if err != nil || value == nil {
		return ""
	}
	return string(value)
}

// IsGenerating reports whether an icon request for the name is in flight.
func (s *IconService) IsGenerating(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.generating[name]
	return ok
}
