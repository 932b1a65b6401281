package reps

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/telemetry/metrics"
	"github.com/2beens/weeklyreps/pkg"

	log "github.com/sirupsen/logrus"
)

// FileMirror keeps a copy of all records in a local CSV file, using the same
// columns as the spreadsheet.
type FileMirror struct {
	mu             sync.Mutex
	path           string
	metricsManager *metrics.Manager
}

func NewFileMirror(path string, metricsManager *metrics.Manager) *FileMirror {
	return &FileMirror{
		path:           path,
		metricsManager: metricsManager,
	}
}

func (m *FileMirror) Path() string {
	return m.path
}

// FetchAll reads the whole file. A missing file is an empty mirror.
func (m *FileMirror) FetchAll(ctx context.Context) ([]challenge.LogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.Open(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []challenge.LogRecord{}, nil
		}
		return nil, fmt.Errorf("open mirror file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("close mirror file: %s", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mirror file: %w", err)
		}
		rows = append(rows, row)
	}

	records, skipped := parseRows(rows)
	if skipped > 0 {
		log.Warnf("file mirror: skipped %d malformed rows in [%s]", skipped, m.path)
		if m.metricsManager != nil {
			m.metricsManager.CounterSkippedRows.Add(float64(skipped))
		}
	}
	reportMalformedRows(ctx, skipped)
	return records, nil
}

// Append adds a row, writing the header first when the file is new.
func (m *FileMirror) Append(ctx context.Context, record challenge.LogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pkg.EnsureDir(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("mirror dir: %w", err)
	}
	exists, err := pkg.PathExists(m.path, false)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open mirror file: %w", err)
	}

	writer := csv.NewWriter(f)
	if !exists {
		if err := writer.Write(Header); err != nil {
			_ = f.Close()
			return fmt.Errorf("write mirror header: %w", err)
		}
	}
	if err := writer.Write(RecordToRow(record)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write mirror row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush mirror file: %w", err)
	}

	return f.Close()
}
