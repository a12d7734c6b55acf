package ports

import (
	"context"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/domain"
)

// SessionProvider yields a valid session-continuation token, refreshing
// it through the browser capture procedure when absent or expired.
type SessionProvider interface {
	Ensure(ctx context.Context) (string, error)
}

// Backend submits one normalized batch to the remote tracking service and
// returns decoded results keyed by tracking number. proxyURL selects the
// outbound transport: empty for direct, a single descriptor or a
// comma-joined chain otherwise.
type Backend interface {
	Track(ctx context.Context, items []domain.RequestItem, proxyURL string) (map[string]domain.Result, error)
}

// Capturer performs one single-shot browser capture attempt. It returns
// an empty token, without error, when the page finished without issuing
// the intercepted call.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}
