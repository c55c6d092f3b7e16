// Package worker mirrors ledger events into the Sheets copy.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/sheets"
)

const (
	defaultTimeout  = 30 * time.Second
	recentEvents    = 10000
	recentEventsTTL = time.Hour
)

// SyncWorker applies ledger events to a mirror. Events already applied in
// the last hour are acknowledged without touching the mirror again.
type SyncWorker struct {
	mirror  sheets.Mirror
	logger  *applog.Logger
	timeout time.Duration
	seen    *cache.LRUCache[struct{}]

	processed  int64
	duplicates int64
	failed     int64
}

// Stats counts handled events by outcome.
type Stats struct {
	Processed  int64
	Duplicates int64
	Failed     int64
}

func NewSyncWorker(mirror sheets.Mirror, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		mirror:  mirror,
		logger:  logger.WithComponent(applog.ComponentWorker),
		timeout: defaultTimeout,
		seen:    cache.NewLRUCache[struct{}](recentEvents, recentEventsTTL),
	}
}

// HandleLedgerEvent is the consumer callback. A returned error makes the
// broker redeliver the event.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, ev *core.LedgerEvent) error {
	key := eventKey(ev)
	fields := applog.NewFields().
		With(applog.FieldEventType, ev.Type).
		WithUser(ev.UserID).
		WithPeriod(ev.Year, ev.Month).
		With(applog.FieldPeriodID, ev.PeriodID)

	if !w.seen.SetIfAbsent(key, struct{}{}) {
		atomic.AddInt64(&w.duplicates, 1)
		w.logger.DebugContext(ctx, "Skipping duplicate ledger event", fields.Args()...)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := sheets.Apply(ctx, w.mirror, ev); err != nil {
		// Forget the key so the redelivery is applied.
		w.seen.Delete(key)
		atomic.AddInt64(&w.failed, 1)
		w.logger.Failure(ctx, "Failed to mirror ledger event", err, fields)
		return fmt.Errorf("mirror %s: %w", ev.Type, err)
	}

	atomic.AddInt64(&w.processed, 1)
	w.logger.InfoContext(ctx, "Mirrored ledger event", fields.Args()...)
	return nil
}

func (w *SyncWorker) Stats() Stats {
	return Stats{
		Processed:  atomic.LoadInt64(&w.processed),
		Duplicates: atomic.LoadInt64(&w.duplicates),
		Failed:     atomic.LoadInt64(&w.failed),
	}
}

func eventKey(ev *core.LedgerEvent) string {
	if ev.Expense != nil {
		return ev.Type + ":" + ev.Expense.ID
	}
	return fmt.Sprintf("%s:%s:%d", ev.Type, ev.PeriodID, ev.Timestamp.UnixNano())
}
