package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultWriteTimeout = 5 * time.Second

// AsyncRecorder wraps a Recorder with fire-and-forget semantics: Submit
// spawns the write and returns immediately, and a failed write is logged
// locally and dropped. Audit durability must never become a cause of a
// user-facing failure.
type AsyncRecorder struct {
	inner        Recorder
	logger       *slog.Logger
	writeTimeout time.Duration
	wg           sync.WaitGroup
}

func NewAsyncRecorder(inner Recorder, logger *slog.Logger) *AsyncRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncRecorder{
		inner:        inner,
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
	}
}

// Submit records e without blocking the caller. The write runs on its own
// context so cancellation of the originating operation does not lose the
// entry.
func (a *AsyncRecorder) Submit(e Entry) {
	if a == nil || a.inner == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
		defer cancel()
		if err := a.inner.Record(ctx, e); err != nil {
			a.logger.Warn("audit_write_failed",
				"action", string(e.Action),
				"skill_id", e.SkillID,
				"error", err.Error(),
			)
		}
	}()
}

// Flush waits for all in-flight writes. Used at shutdown and in tests.
func (a *AsyncRecorder) Flush() {
	if a == nil {
		return
	}
	a.wg.Wait()
}

// Query passes through to the wrapped recorder.
func (a *AsyncRecorder) Query(ctx context.Context, userID string, f Filter, p Page) ([]Entry, error) {
	return a.inner.Query(ctx, userID, f, p)
}
