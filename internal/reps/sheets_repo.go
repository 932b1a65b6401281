package reps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/telemetry/metrics"
	"github.com/2beens/weeklyreps/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetsCacheSize       = 1024 * 1024 // 1 MB, enough for a few thousand rows
	sheetsRecordsCacheKey = "records"

	// stored values are written as typed, so dates stay YYYY-MM-DD strings
	sheetsValueInputOption = "RAW"
)

var ErrSheetsUnavailable = errors.New("sheets unavailable")

// NewSheetsService creates a Sheets API client authorized with a service account.
// Token requests and API calls both go through httpClient.
func NewSheetsService(ctx context.Context, credentialsJSON []byte, httpClient *http.Client) (*sheets.Service, error) {
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, creds.TokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve sheets client: %w", err)
	}

	return service, nil
}

type NewSheetsRepoParams struct {
	Service        *sheets.Service
	SpreadsheetID  string
	Range          string
	CacheTTL       time.Duration
	MetricsManager *metrics.Manager
}

// SheetsRepo stores records as rows of a Google spreadsheet. Reads are cached
// shortly, and every call goes through a circuit breaker, so a dead API does not
// stall each page render for the whole request timeout.
type SheetsRepo struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string

	cache           *freecache.Cache
	cacheTTLSeconds int
	breaker         *gobreaker.CircuitBreaker[any]
	metricsManager  *metrics.Manager
}

func NewSheetsRepo(params NewSheetsRepoParams) *SheetsRepo {
	repo := &SheetsRepo{
		service:         params.Service,
		spreadsheetID:   params.SpreadsheetID,
		readRange:       params.Range,
		cacheTTLSeconds: int(params.CacheTTL.Seconds()),
		metricsManager:  params.MetricsManager,
	}
	if repo.cacheTTLSeconds > 0 {
		repo.cache = freecache.NewCache(sheetsCacheSize)
	}

	repo.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "sheets:" + params.SpreadsheetID,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker [%s]: %s -> %s", name, from, to)
		},
	})

	return repo
}

func (r *SheetsRepo) FetchAll(ctx context.Context) (_ []challenge.LogRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sheets.fetchAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, ok := r.cachedRecords(); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		reportMalformedRows(ctx, cached.Skipped)
		return cached.Records, nil
	}

	rows, err := r.getRows(ctx)
	if err != nil {
		return nil, err
	}

	records, skipped := parseRows(rows)
	if skipped > 0 {
		log.Warnf("sheets repo: skipped %d malformed rows", skipped)
		if r.metricsManager != nil {
			r.metricsManager.CounterSkippedRows.Add(float64(skipped))
		}
	}
	span.SetAttributes(attribute.Int("records", len(records)), attribute.Int("skipped", skipped))
	reportMalformedRows(ctx, skipped)

	r.cacheRecords(sheetsCachedRows{Records: records, Skipped: skipped})
	return records, nil
}

func (r *SheetsRepo) Append(ctx context.Context, record challenge.LogRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sheets.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("person", record.Person), attribute.Int("week", record.WeekIndex))

	if err := record.Validate(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	if err := r.appendRow(ctx, RecordToRow(record)); err != nil {
		return err
	}

	if r.cache != nil {
		r.cache.Del([]byte(sheetsRecordsCacheKey))
	}
	return nil
}

// EnsureHeader writes the header row into an empty sheet.
func (r *SheetsRepo) EnsureHeader(ctx context.Context) error {
	rows, err := r.getRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	log.Infof("sheets repo: sheet [%s] empty, writing header", r.readRange)
	return r.appendRow(ctx, Header)
}

func (r *SheetsRepo) getRows(ctx context.Context) ([][]string, error) {
	res, err := r.breaker.Execute(func() (any, error) {
		return r.service.Spreadsheets.Values.
			Get(r.spreadsheetID, r.readRange).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get values: %w", ErrSheetsUnavailable, err)
	}

	valueRange, ok := res.(*sheets.ValueRange)
	if !ok || valueRange == nil {
		return nil, nil
	}
	return cellsToStrings(valueRange.Values), nil
}

func (r *SheetsRepo) appendRow(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, c := range row {
		cells[i] = c
	}

	_, err := r.breaker.Execute(func() (any, error) {
		return r.service.Spreadsheets.Values.
			Append(r.spreadsheetID, r.readRange, &sheets.ValueRange{
				Values: [][]interface{}{cells},
			}).
			ValueInputOption(sheetsValueInputOption).
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
	})
	if err != nil {
		return fmt.Errorf("%w: append values: %w", ErrSheetsUnavailable, err)
	}
	return nil
}

// sheetsCachedRows is a parsed sheet, kept with its malformed row count.
type sheetsCachedRows struct {
	Records []challenge.LogRecord `json:"records"`
	Skipped int                   `json:"skipped"`
}

func (r *SheetsRepo) cachedRecords() (sheetsCachedRows, bool) {
	if r.cache == nil {
		return sheetsCachedRows{}, false
	}
	cachedBytes, err := r.cache.Get([]byte(sheetsRecordsCacheKey))
	if err != nil {
		return sheetsCachedRows{}, false
	}
	var cached sheetsCachedRows
	if err := json.Unmarshal(cachedBytes, &cached); err != nil {
		log.Errorf("sheets repo: unmarshal cached records: %s", err)
		return sheetsCachedRows{}, false
	}
	return cached, true
}

func (r *SheetsRepo) cacheRecords(rows sheetsCachedRows) {
	if r.cache == nil {
		return
	}
	recordsBytes, err := json.Marshal(rows)
	if err != nil {
		log.Errorf("sheets repo: marshal records for cache: %s", err)
		return
	}
	if err := r.cache.Set([]byte(sheetsRecordsCacheKey), recordsBytes, r.cacheTTLSeconds); err != nil {
		log.Warnf("sheets repo: cache records: %s", err)
	}
}

func cellsToStrings(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := make([]string, len(v))
		for i, cell := range v {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
