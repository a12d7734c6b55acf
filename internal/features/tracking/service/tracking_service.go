package service

import (
	"context"
	"math/rand"
	"regexp"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/store"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/domain"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/ports"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/tables"

	"go.uber.org/zap"
)

// MaxBatchSize is the largest batch the backend accepts in one call.
const MaxBatchSize = 40

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NormalizeNumber strips every non-alphanumeric character from a tracking
// number. The operation is idempotent.
func NormalizeNumber(number string) string {
	return nonAlphanumeric.ReplaceAllString(number, "")
}

// TrackingService validates and normalizes client input, picks an
// outbound proxy from the cached pool and delegates to the backend.
type TrackingService struct {
	backend ports.Backend
	store   *store.Store
	tables  *tables.Tables
	logger  *zap.Logger
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(backend ports.Backend, s *store.Store, tbl *tables.Tables) *TrackingService {
	return &TrackingService{
		backend: backend,
		store:   s,
		tables:  tbl,
		logger:  logger.Named("tracking"),
	}
}

// Track resolves one batch of raw (number, slug) pairs into normalized
// results keyed by tracking number. Batches outside [1,40] fail with a
// validation error before anything is sent.
func (s *TrackingService) Track(ctx context.Context, pairs []domain.RequestPair) (map[string]domain.Result, error) {
	if len(pairs) == 0 || len(pairs) > MaxBatchSize {
		return nil, &domain.ValidationError{Message: "invalid number of trackings provided"}
	}

	items := make([]domain.RequestItem, 0, len(pairs))
	for _, pair := range pairs {
		items = append(items, domain.RequestItem{
			Number:      NormalizeNumber(pair.Tracking),
			CarrierCode: s.tables.CarrierCodeBySlug(pair.Slug),
		})
	}

	proxyURL := pickRandomProxy(s.store.Read().Tracking.Proxies)

	s.logger.Info("Preparing tracking batch",
		zap.Int("count", len(items)),
		zap.Bool("proxied", proxyURL != ""),
	)

	return s.backend.Track(ctx, items, proxyURL)
}

// pickRandomProxy spreads outbound requests across the configured pool.
func pickRandomProxy(proxies []string) string {
	if len(proxies) == 0 {
		return ""
	}
	return proxies[rand.Intn(len(proxies))]
}
