package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/store"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/domain"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/ports"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// defaultRefreshHours applies when the cache document does not carry a
// refresh interval.
const defaultRefreshHours = 1

// Manager decides when the cached session token is still usable and
// drives the capture procedure when it is not. It reads the tracking
// section once as a snapshot and issues a single write after a capture,
// so a concurrent writer cannot produce a torn id/expiry pair on the
// decision path.
type Manager struct {
	store       *store.Store
	capturer    ports.Capturer
	maxAttempts int
	logger      *zap.Logger
}

// NewManager creates a session manager. maxAttempts bounds the capture
// retries of a single refresh; values below 1 are treated as 1.
func NewManager(s *store.Store, capturer ports.Capturer, maxAttempts int) *Manager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Manager{
		store:       s,
		capturer:    capturer,
		maxAttempts: maxAttempts,
		logger:      logger.Named("session"),
	}
}

// Ensure returns the cached token when it is still inside its refresh
// window, otherwise captures and persists a fresh one.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	tr := m.store.Read().Tracking

	if token, ok := m.valid(tr); ok {
		return token, nil
	}

	m.logger.Info("Session token absent or expired, capturing a new one")
	return m.refresh(ctx)
}

// valid checks one snapshot of the tracking section: the token holds
// until capture time plus the refresh margin.
func (m *Manager) valid(tr store.TrackingSection) (string, bool) {
	if tr.LastEventID == "" || tr.LastEventIDExpiry == "" {
		return "", false
	}

	captured, err := time.Parse(store.ExpiryLayout, tr.LastEventIDExpiry)
	if err != nil {
		m.logger.Warn("Unparsable session expiry, treating as expired",
			zap.String("expiry", tr.LastEventIDExpiry),
		)
		return "", false
	}

	margin := time.Duration(tr.RefreshHours) * time.Hour
	if margin <= 0 {
		margin = defaultRefreshHours * time.Hour
	}

	if !time.Now().UTC().Before(captured.Add(margin)) {
		return "", false
	}
	return tr.LastEventID, true
}

// refresh retries capture with exponential backoff up to the attempt
// budget, then persists the captured token with a single write.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	var token string

	attempt := 0
	operation := func() error {
		attempt++
		m.logger.Debug("Capturing session token", zap.Int("attempt", attempt))

		captured, err := m.capturer.Capture(ctx)
		if err != nil {
			return err
		}
		if captured == "" {
			return errors.New("page issued no session call")
		}
		token = captured
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(m.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
	}

	doc := m.store.Read()
	doc.Tracking.LastEventID = token
	doc.Tracking.LastEventIDExpiry = time.Now().UTC().Format(store.ExpiryLayout)
	if err := m.store.Write(doc); err != nil {
		m.logger.Warn("Failed to persist captured session token", zap.Error(err))
	}

	m.logger.Info("New session token captured")
	return token, nil
}
