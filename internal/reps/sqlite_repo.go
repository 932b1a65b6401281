package reps

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rep_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    person      TEXT NOT NULL,
    exercise    TEXT NOT NULL,
    reps        INTEGER NOT NULL,
    occurred_on TEXT NOT NULL,
    week_index  INTEGER NOT NULL,
    created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SqliteRepo is the single-file store for running without any external service.
type SqliteRepo struct {
	db *sql.DB
}

// OpenSqlite opens (and creates, if missing) the sqlite database at path.
// Use ":memory:" for a throwaway database.
func OpenSqlite(ctx context.Context, path string) (*SqliteRepo, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create rep_log table: %w", err)
	}

	return &SqliteRepo{db: db}, nil
}

func (r *SqliteRepo) Close() error {
	return r.db.Close()
}

func (r *SqliteRepo) FetchAll(ctx context.Context) (_ []challenge.LogRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.fetchAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT person, exercise, reps, occurred_on, week_index FROM rep_log ORDER BY id;`,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]challenge.LogRecord, 0)
	for rows.Next() {
		var rec challenge.LogRecord
		var occurredOn string
		if err := rows.Scan(&rec.Person, &rec.Exercise, &rec.Reps, &occurredOn, &rec.WeekIndex); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if rec.OccurredOn, err = challenge.ParseDate(occurredOn); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (r *SqliteRepo) Append(ctx context.Context, record challenge.LogRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := record.Validate(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO rep_log (person, exercise, reps, occurred_on, week_index) VALUES (?, ?, ?, ?, ?);`,
		record.Person, challenge.NormalizeExercise(record.Exercise), record.Reps, record.Date(), record.WeekIndex,
	)
	return err
}
