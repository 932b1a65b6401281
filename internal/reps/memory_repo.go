package reps

import (
	"context"
	"fmt"
	"sync"

	"github.com/2beens/weeklyreps/internal/challenge"
)

// MemoryRepo keeps records in process memory. Used in development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records []challenge.LogRecord
}

func NewMemoryRepo(seed ...challenge.LogRecord) *MemoryRepo {
	records := make([]challenge.LogRecord, len(seed))
	copy(records, seed)
	return &MemoryRepo{
		records: records,
	}
}

// SampleRecords are the development seed: one record for each of two people,
// logged on the baseline date.
func SampleRecords(cal challenge.Calendar) []challenge.LogRecord {
	return []challenge.LogRecord{
		challenge.NewLogRecord(cal, "Felipe", "squat", 120, cal.Baseline()),
		challenge.NewLogRecord(cal, "Kaden", "push-up", 80, cal.Baseline()),
	}
}

func (r *MemoryRepo) FetchAll(ctx context.Context) ([]challenge.LogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]challenge.LogRecord, len(r.records))
	copy(records, r.records)
	return records, nil
}

func (r *MemoryRepo) Append(ctx context.Context, record challenge.LogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}
