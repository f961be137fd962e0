package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/HendryAvila/gemini-advisor/internal/journal"
)

// Recorder is notified after every completed tool call.
// It's an optional dependency; the dispatcher works fine without one.
// *journal.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// record is best-effort: a journal failure is logged and never changes
// the response returned to the caller. The entry is written even when
// the call context was cancelled.
func (d *Dispatcher) record(ctx context.Context, log *zap.Logger, e journal.Entry) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		log.Warn("journal write failed", zap.Error(err))
	}
}
