package reps

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/config"
	"github.com/2beens/weeklyreps/internal/telemetry/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type OpenParams struct {
	Config         *config.Config
	Calendar       challenge.Calendar
	MetricsManager *metrics.Manager

	// SeedSamples fills the memory store with sample records
	SeedSamples bool
	// DBPool is required for the postgres storage
	DBPool *pgxpool.Pool
	// SheetsCredentialsJSON is the service account key, required for the sheets storage
	SheetsCredentialsJSON []byte
	HTTPClient            *http.Client
}

// Open creates the configured storage, wrapped with the CSV mirror when a mirror
// path is set, and instrumented. The returned close func releases what Open created.
func Open(ctx context.Context, params OpenParams) (Repo, func(), error) {
	cfg := params.Config
	closeFn := func() {}

	var primary Repo
	switch cfg.Storage {
	case config.StorageMemory:
		var seed []challenge.LogRecord
		if params.SeedSamples {
			seed = SampleRecords(params.Calendar)
		}
		primary = NewMemoryRepo(seed...)
	case config.StorageSheets:
		service, err := NewSheetsService(ctx, params.SheetsCredentialsJSON, params.HTTPClient)
		if err != nil {
			return nil, nil, err
		}
		sheetsRepo := NewSheetsRepo(NewSheetsRepoParams{
			Service:        service,
			SpreadsheetID:  cfg.SheetsSpreadsheetID,
			Range:          cfg.SheetsRange,
			CacheTTL:       time.Duration(cfg.SheetsCacheTTLSeconds) * time.Second,
			MetricsManager: params.MetricsManager,
		})
		headerCtx, cancel := context.WithTimeout(ctx, cfg.StorageTimeout())
		if err := sheetsRepo.EnsureHeader(headerCtx); err != nil {
			log.Errorf("sheets repo: ensure header: %s", err)
		}
		cancel()
		primary = sheetsRepo
	case config.StoragePostgres:
		if params.DBPool == nil {
			return nil, nil, fmt.Errorf("postgres storage: db pool not set")
		}
		psqlRepo := NewPsqlRepo(params.DBPool)
		if err := psqlRepo.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		primary = psqlRepo
	case config.StorageSqlite:
		sqliteRepo, err := OpenSqlite(ctx, cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() {
			if err := sqliteRepo.Close(); err != nil {
				log.Errorf("close sqlite db: %s", err)
			}
		}
		primary = sqliteRepo
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownStorage, cfg.Storage)
	}

	repo := primary
	if cfg.MirrorPath != "" {
		log.Infof("mirroring records to [%s]", cfg.MirrorPath)
		repo = NewMirroredRepo(primary, NewFileMirror(cfg.MirrorPath, params.MetricsManager))
	}

	return NewInstrumentedRepo(repo, cfg.StorageTimeout(), params.MetricsManager), closeFn, nil
}
