// Batched insertion shared by every backend. The pipeline materializes each
// table before loading, so batching here is plain slice chunking; a progress
// line with running totals and rows/sec is emitted per flush.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultBatchSize bounds statement size across dialects.
const DefaultBatchSize = 500

// InsertBatches appends rows to table in chunks of batchSize and returns the
// total inserted. The first failing chunk aborts and is reported with the
// table name; rows already flushed stay inserted (the surrounding full-reload
// model makes partial state unreachable after an aborted run).
func InsertBatches(
	ctx context.Context,
	repo Repository,
	table string,
	columns []string,
	rows [][]any,
	batchSize int,
	log *slog.Logger,
) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = slog.Default()
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := repo.Insert(ctx, table, columns, rows[off:end])
		total += n
		if err != nil {
			return total, fmt.Errorf("insert into %s: %w", table, err)
		}
		batches++
		elapsed := time.Since(start).Truncate(time.Millisecond)
		rps := float64(0)
		if secs := elapsed.Seconds(); secs > 0 {
			rps = float64(total) / secs
		}
		log.Debug("batch flushed",
			slog.String("table", table),
			slog.Int("batch", batches),
			slog.Int64("inserted", n),
			slog.Int64("total", total),
			slog.Float64("rps", rps),
			slog.Duration("elapsed", elapsed))
	}
	return total, nil
}
