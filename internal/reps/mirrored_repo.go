package reps

import (
	"context"
	"fmt"

	"github.com/2beens/weeklyreps/internal/challenge"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// MirroredRepo writes to the primary store and then to the mirror.
// Reads merge both, so rows that only made it into one of them still show up.
type MirroredRepo struct {
	primary Repo
	mirror  Repo
}

func NewMirroredRepo(primary, mirror Repo) *MirroredRepo {
	return &MirroredRepo{
		primary: primary,
		mirror:  mirror,
	}
}

// FetchAll fails only when both stores fail. With one of them down, the other
// one's records are returned. Malformed rows are reported like the records are
// merged: the mirror is a copy, so the larger of the two counts.
func (r *MirroredRepo) FetchAll(ctx context.Context) ([]challenge.LogRecord, error) {
	var primaryStats, mirrorStats FetchStats
	primaryRecords, primaryErr := r.primary.FetchAll(WithFetchStats(ctx, &primaryStats))
	mirrorRecords, mirrorErr := r.mirror.FetchAll(WithFetchStats(ctx, &mirrorStats))
	reportMalformedRows(ctx, max(primaryStats.MalformedRows(), mirrorStats.MalformedRows()))

	switch {
	case primaryErr != nil && mirrorErr != nil:
		return nil, multierr.Combine(
			fmt.Errorf("primary: %w", primaryErr),
			fmt.Errorf("mirror: %w", mirrorErr),
		)
	case primaryErr != nil:
		log.Errorf("mirrored repo: primary fetch failed, serving mirror only: %s", primaryErr)
		return mirrorRecords, nil
	case mirrorErr != nil:
		log.Warnf("mirrored repo: mirror fetch failed: %s", mirrorErr)
		return primaryRecords, nil
	}

	return MergeRecords(primaryRecords, mirrorRecords), nil
}

// Append fails if the primary write fails. A failed mirror write is only logged,
// the record is safe in the primary store.
func (r *MirroredRepo) Append(ctx context.Context, record challenge.LogRecord) error {
	if err := r.primary.Append(ctx, record); err != nil {
		return err
	}
	if err := r.mirror.Append(ctx, record); err != nil {
		log.Warnf("mirrored repo: mirror append failed: %s", err)
	}
	return nil
}

// MergeRecords merges two record lists, deduplicating by full row equality.
// A row present n times in a and m times in b is kept max(n, m) times, so
// legitimately repeated submissions survive. Order: all of a, then what b adds.
func MergeRecords(a, b []challenge.LogRecord) []challenge.LogRecord {
	countInA := make(map[string]int, len(a))
	for _, rec := range a {
		countInA[rec.RowKey()]++
	}

	merged := make([]challenge.LogRecord, 0, len(a)+len(b))
	merged = append(merged, a...)

	seenInB := make(map[string]int, len(b))
	for _, rec := range b {
		key := rec.RowKey()
		seenInB[key]++
		if seenInB[key] > countInA[key] {
			merged = append(merged, rec)
		}
	}
	return merged
}
