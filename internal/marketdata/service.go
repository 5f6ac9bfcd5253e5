package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coinlens/internal/domain"
	"coinlens/internal/util"
)

// Mode selects how much detail a batch query resolves.
type Mode string

const (
	// ModeFull resolves full detail including image URLs, with secondary
	// fallback for symbols or images the primary cannot serve.
	ModeFull Mode = "full"
	// ModePartial resolves quotes only and never falls back for images.
	ModePartial Mode = "partial"
)

// Result is one resolved batch. Symbols with no resolvable record are simply
// absent from Data.
type Result struct {
	Data       []domain.CanonicalCoin `json:"data"`
	Timestamp  int64                  `json:"timestamp"` // unix milliseconds
	Generation uint64                 `json:"generation"`
}

// Fetcher resolves symbols against one provider.
type Fetcher interface {
	Source() domain.Source
	Fetch(ctx context.Context, symbols []string) ([]domain.CanonicalCoin, error)
}

const (
	rateLimitAttempts = 3
	rateLimitDelay    = 2 * time.Second
)

// Service fans batch symbol queries to the primary provider with secondary
// fallback, caching per symbol with per-source TTLs.
type Service struct {
	primary      Fetcher
	secondary    Fetcher
	cache        *cache
	fetchTimeout time.Duration
	retryDelay   time.Duration
	log          *slog.Logger
}

// NewService creates a Service over the two providers.
func NewService(primary, secondary Fetcher, primaryTTL, secondaryTTL, fetchTimeout time.Duration, log *slog.Logger) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Service{
		primary:      primary,
		secondary:    secondary,
		cache:        newCache(primaryTTL, secondaryTTL),
		fetchTimeout: fetchTimeout,
		retryDelay:   rateLimitDelay,
		log:          log,
	}
}

// Query resolves an ordered batch of symbols. The generation tag is carried
// through to the result so the caller can discard stale responses. Symbols
// the primary cannot resolve are retried against the secondary provider in
// ModeFull; a symbol neither provider knows is absent from the result, not
// an error. The whole batch fails only when both providers fail outright and
// nothing could be served from cache.
func (s *Service) Query(ctx context.Context, symbols []string, generation uint64, mode Mode) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	wanted := dedupeSymbols(symbols)
	resolved := make(map[string]domain.CanonicalCoin, len(wanted))

	var missing []string
	for _, sym := range wanted {
		if coin, ok := s.cache.get(domain.SourcePrimary, sym); ok {
			resolved[sym] = coin
			continue
		}
		if coin, ok := s.cache.get(domain.SourceSecondary, sym); ok {
			resolved[sym] = coin
			continue
		}
		missing = append(missing, sym)
	}

	var primaryErr error
	if len(missing) > 0 {
		coins, err := s.fetchWithRetry(ctx, s.primary, missing)
		if err != nil {
			primaryErr = err
			s.log.Warn("primary provider fetch failed", "symbols", len(missing), "error", err)
		}
		for _, coin := range coins {
			s.cache.put(coin)
			resolved[strings.ToLower(coin.Symbol)] = coin
		}
	}

	if mode == ModeFull {
		var fallback []string
		for _, sym := range wanted {
			coin, ok := resolved[sym]
			if !ok || coin.ImageURL == "" {
				fallback = append(fallback, sym)
			}
		}
		if len(fallback) > 0 {
			coins, err := s.fetchWithRetry(ctx, s.secondary, fallback)
			if err != nil {
				s.log.Warn("secondary provider fallback failed", "symbols", len(fallback), "error", err)
				if primaryErr != nil && len(resolved) == 0 {
					return Result{}, fmt.Errorf("market data unavailable: %w", primaryErr)
				}
			}
			for _, coin := range coins {
				s.cache.put(coin)
				sym := strings.ToLower(coin.Symbol)
				if existing, ok := resolved[sym]; ok {
					// Primary detail wins; only the image is substituted.
					if existing.ImageURL == "" {
						existing.ImageURL = coin.ImageURL
						resolved[sym] = existing
					}
					continue
				}
				resolved[sym] = coin
			}
		}
	} else if primaryErr != nil && len(resolved) == 0 {
		return Result{}, fmt.Errorf("market data unavailable: %w", primaryErr)
	}

	// Output follows the input symbol order.
	data := make([]domain.CanonicalCoin, 0, len(resolved))
	for _, sym := range wanted {
		if coin, ok := resolved[sym]; ok {
			data = append(data, coin)
		}
	}

	return Result{
		Data:       data,
		Timestamp:  time.Now().UnixMilli(),
		Generation: generation,
	}, nil
}

// fetchWithRetry applies the fixed rate-limit retry budget to one provider
// fetch. Non-rate-limit errors fail immediately.
func (s *Service) fetchWithRetry(ctx context.Context, f Fetcher, symbols []string) ([]domain.CanonicalCoin, error) {
	var coins []domain.CanonicalCoin
	err := util.RetryFixed(ctx, rateLimitAttempts, s.retryDelay, IsRateLimited, func() error {
		var ferr error
		coins, ferr = f.Fetch(ctx, symbols)
		return ferr
	})
	return coins, err
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToLower(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
