package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// Type identifies a class of background job. At most one job of each
// type runs at any moment.
type Type string

// TypeTrackingRefresh keeps the backend session token fresh.
const TypeTrackingRefresh Type = "tracking_refresh"

// Job is one unit of background work. A returned error is logged and
// the loop keeps going.
type Job func(ctx context.Context) error

// Supervisor runs periodic jobs and guarantees single-flight execution
// per job type.
type Supervisor struct {
	mu     sync.Mutex
	states map[Type]*atomic.Bool
	logger *zap.Logger
}

// NewSupervisor creates an empty Supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		states: make(map[Type]*atomic.Bool),
		logger: logger.Named("daemon"),
	}
}

// Running reports whether a job of the given type is currently executing.
func (s *Supervisor) Running(t Type) bool {
	return s.state(t).Load()
}

func (s *Supervisor) state(t Type) *atomic.Bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[t]
	if !ok {
		st = &atomic.Bool{}
		s.states[t] = st
	}
	return st
}

// Start runs job every interval until ctx is cancelled. The first run
// happens immediately. If another job of the same type is still
// executing when a run is due, the run waits a second and retries
// instead of piling up.
func (s *Supervisor) Start(ctx context.Context, t Type, interval time.Duration, job Job) {
	l := s.logger.With(zap.String("type", string(t)))
	st := s.state(t)

	for {
		if !st.CompareAndSwap(false, true) {
			l.Warn("Previous run still in progress, waiting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := job(ctx); err != nil {
			l.Error("Background job failed", zap.Error(err))
		}
		st.Store(false)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
