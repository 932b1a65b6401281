package reps

import (
	"context"
	"sync/atomic"
)

type fetchStatsKey struct{}

// FetchStats collects what stores dropped while serving FetchAll: rows that are
// in storage but could not be parsed into a record. Attach it with WithFetchStats.
type FetchStats struct {
	malformedRows atomic.Int64
}

func WithFetchStats(ctx context.Context, stats *FetchStats) context.Context {
	return context.WithValue(ctx, fetchStatsKey{}, stats)
}

func (s *FetchStats) MalformedRows() int {
	return int(s.malformedRows.Load())
}

func reportMalformedRows(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	if stats, ok := ctx.Value(fetchStatsKey{}).(*FetchStats); ok && stats != nil {
		stats.malformedRows.Add(int64(n))
	}
}
