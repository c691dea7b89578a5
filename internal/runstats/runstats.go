// Package runstats reports the end-of-run summary counters the original
// implementation logged from order_book.finalize(): elapsed time,
// throughput, and message/snapshot/unknown-tag totals (SPEC_FULL.md §4).
package runstats

import (
	"time"

	"go.uber.org/zap"

	"itchbook/internal/book"
)

// Report logs a structured end-of-run summary.
func Report(log *zap.Logger, stats book.Stats, bytesRead int64, unknownTags, snapshots int64, elapsed time.Duration) {
	mbps := float64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		mbps = float64(bytesRead) / (1024 * 1024) / secs
	}
	log.Info("run complete",
		zap.Duration("elapsed", elapsed),
		zap.Float64("throughput_mb_s", mbps),
		zap.Uint64("shares_added", stats.Added),
		zap.Uint64("shares_executed", stats.Executed),
		zap.Uint64("shares_canceled", stats.Canceled),
		zap.Uint64("shares_deleted", stats.Deleted),
		zap.Uint64("book_updates", stats.Updates),
		zap.Int64("snapshots_emitted", snapshots),
		zap.Int64("unknown_tags", unknownTags),
	)
}
