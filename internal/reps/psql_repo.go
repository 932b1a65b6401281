package reps

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// PsqlSchema creates the rep_log table, shared by postgres and sqlite.
const PsqlSchema = `
CREATE TABLE IF NOT EXISTS rep_log (
    id          SERIAL PRIMARY KEY,
    person      VARCHAR(100) NOT NULL,
    exercise    VARCHAR(100) NOT NULL,
    reps        INTEGER NOT NULL,
    occurred_on DATE NOT NULL,
    week_index  INTEGER NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

type PsqlRepo struct {
	db *pgxpool.Pool
}

func NewPsqlRepo(db *pgxpool.Pool) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

func (r *PsqlRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, PsqlSchema); err != nil {
		return fmt.Errorf("create rep_log table: %w", err)
	}
	return nil
}

func (r *PsqlRepo) FetchAll(ctx context.Context) (_ []challenge.LogRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.fetchAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT person, exercise, reps, occurred_on, week_index FROM rep_log ORDER BY id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]challenge.LogRecord, 0)
	for rows.Next() {
		var rec challenge.LogRecord
		var occurredOn time.Time
		if err := rows.Scan(&rec.Person, &rec.Exercise, &rec.Reps, &occurredOn, &rec.WeekIndex); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		rec.OccurredOn = challenge.DateOf(occurredOn)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (r *PsqlRepo) Append(ctx context.Context, record challenge.LogRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("person", record.Person), attribute.Int("week", record.WeekIndex))

	if err := record.Validate(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO rep_log (person, exercise, reps, occurred_on, week_index) VALUES ($1, $2, $3, $4, $5);`,
		record.Person, challenge.NormalizeExercise(record.Exercise), record.Reps, record.OccurredOn, record.WeekIndex,
	)
	return err
}
