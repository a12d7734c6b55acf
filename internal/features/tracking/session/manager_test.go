package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/cache"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/store"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCapturer scripts the outcome of successive capture attempts.
type mockCapturer struct {
	tokens []string
	errs   []error
	calls  int
}

func (m *mockCapturer) Capture(ctx context.Context) (string, error) {
	i := m.calls
	m.calls++

	var token string
	if i < len(m.tokens) {
		token = m.tokens[i]
	}
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return token, err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "cache.json"), cache.NewMemoryAdapter(), 10*time.Second)
}

// TestEnsure_ValidToken verifies that a token inside its window is
// returned without invoking the capturer.
func TestEnsure_ValidToken(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(store.Document{Tracking: store.TrackingSection{
		LastEventID:       "cached-token",
		LastEventIDExpiry: time.Now().UTC().Format(store.ExpiryLayout),
		RefreshHours:      1,
	}}))

	capturer := &mockCapturer{}
	m := NewManager(s, capturer, 3)

	token, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	assert.Zero(t, capturer.calls)
}

// TestEnsure_ExpiredToken verifies that a stale token triggers a capture.
func TestEnsure_ExpiredToken(t *testing.T) {
	s := newTestStore(t)
	stale := time.Now().UTC().Add(-2 * time.Hour).Format(store.ExpiryLayout)
	require.NoError(t, s.Write(store.Document{Tracking: store.TrackingSection{
		LastEventID:       "old-token",
		LastEventIDExpiry: stale,
		RefreshHours:      1,
	}}))

	capturer := &mockCapturer{tokens: []string{"fresh-token"}}
	m := NewManager(s, capturer, 3)

	token, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, capturer.calls)

	// The capture must be persisted with a fresh timestamp.
	tr := s.Read().Tracking
	assert.Equal(t, "fresh-token", tr.LastEventID)
	assert.NotEqual(t, stale, tr.LastEventIDExpiry)
}

// TestEnsure_MissingToken verifies capture on an empty document.
func TestEnsure_MissingToken(t *testing.T) {
	s := newTestStore(t)

	capturer := &mockCapturer{tokens: []string{"first-token"}}
	m := NewManager(s, capturer, 3)

	token, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first-token", token)
}

// TestEnsure_RetriesEmptyCaptures verifies that empty captures are retried
// until one succeeds within the attempt budget.
func TestEnsure_RetriesEmptyCaptures(t *testing.T) {
	s := newTestStore(t)

	capturer := &mockCapturer{tokens: []string{"", "", "third-time"}}
	m := NewManager(s, capturer, 5)

	token, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "third-time", token)
	assert.Equal(t, 3, capturer.calls)
}

// TestEnsure_Exhaustion verifies the typed error once the retry budget is
// spent.
func TestEnsure_Exhaustion(t *testing.T) {
	s := newTestStore(t)

	capturer := &mockCapturer{}
	m := NewManager(s, capturer, 2)

	token, err := m.Ensure(context.Background())
	assert.Empty(t, token)
	assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
	assert.Equal(t, 2, capturer.calls)
}

// TestEnsure_CaptureError verifies that hard capture errors also count
// against the budget and surface as session unavailability.
func TestEnsure_CaptureError(t *testing.T) {
	s := newTestStore(t)

	boom := errors.New("browser crashed")
	capturer := &mockCapturer{errs: []error{boom, boom}}
	m := NewManager(s, capturer, 2)

	_, err := m.Ensure(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
}

// TestEnsure_UnparsableExpiry verifies that a corrupt expiry forces a
// refresh instead of failing.
func TestEnsure_UnparsableExpiry(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(store.Document{Tracking: store.TrackingSection{
		LastEventID:       "token",
		LastEventIDExpiry: "not a timestamp",
	}}))

	capturer := &mockCapturer{tokens: []string{"recaptured"}}
	m := NewManager(s, capturer, 3)

	token, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recaptured", token)
}
