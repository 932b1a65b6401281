package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/reps"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=dashboard_mocks_test.go -package=dashboard_test

type repsRepo interface {
	FetchAll(ctx context.Context) ([]challenge.LogRecord, error)
	Append(ctx context.Context, record challenge.LogRecord) error
}

//go:embed templates/*.html
var templatesFS embed.FS

var errInvalidWeek = errors.New("invalid week")

const (
	storageDiagnostic       = "Storage error: logged reps could not be loaded, showing no data"
	malformedRowsDiagnostic = "%d stored rows could not be read and were ignored"
)

type Handler struct {
	repo           repsRepo
	challenge      challenge.Challenge
	pages          map[string]*template.Template
	secretRequired bool
	now            func() time.Time
}

// NewHandler creates the dashboard handler. secretRequired only adds the secret
// field to the form, checking it is left to the submit middleware.
func NewHandler(repo repsRepo, setup challenge.Challenge, secretRequired bool) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		repo:           repo,
		challenge:      setup,
		pages:          pages,
		secretRequired: secretRequired,
		now:            time.Now,
	}, nil
}

// SetupRoutes registers all dashboard routes. The submit middlewares wrap only
// the routes that log new reps.
func (handler *Handler) SetupRoutes(r *mux.Router, submitMiddlewares ...mux.MiddlewareFunc) {
	guarded := func(h http.HandlerFunc) http.Handler {
		var wrapped http.Handler = h
		for i := len(submitMiddlewares) - 1; i >= 0; i-- {
			wrapped = submitMiddlewares[i](wrapped)
		}
		return wrapped
	}

	r.HandleFunc("/", handler.HandleIndex).Methods("GET").Name("standings")
	r.Handle("/log", guarded(handler.HandleLogForm)).Methods("POST").Name("log-reps-form")
	r.HandleFunc("/reps", handler.HandleRepsPage).Methods("GET").Name("all-reps")
	r.HandleFunc("/reps.csv", handler.HandleRepsCSV).Methods("GET").Name("all-reps-csv")
	r.HandleFunc("/profiles", handler.HandleProfilesPage).Methods("GET").Name("profiles")

	r.HandleFunc("/api/reps", handler.HandleListReps).Methods("GET", "OPTIONS").Name("api-list-reps")
	r.Handle("/api/reps", guarded(handler.HandleAddReps)).Methods("POST").Name("api-log-reps")
	r.HandleFunc("/api/standings", handler.HandleStandings).Methods("GET", "OPTIONS").Name("api-standings")
	r.HandleFunc("/api/status", handler.HandleStatus).Methods("GET", "OPTIONS").Name("api-status")
	r.HandleFunc("/api/profiles", handler.HandleProfiles).Methods("GET", "OPTIONS").Name("api-profiles")
	r.HandleFunc("/api/week", handler.HandleWeek).Methods("GET", "OPTIONS").Name("api-week")
}

// loadRecords never fails: a storage error becomes an empty record set plus
// a diagnostic shown to the user. Stored rows that could not be read are
// returned as malformed, and are mentioned in the diagnostic too.
func (handler *Handler) loadRecords(ctx context.Context) (_ []challenge.LogRecord, malformed int, diagnostic string) {
	var stats reps.FetchStats
	records, err := handler.repo.FetchAll(reps.WithFetchStats(ctx, &stats))
	if err != nil {
		log.Errorf("fetch logged reps: %s", err)
		return []challenge.LogRecord{}, 0, storageDiagnostic
	}

	malformed = stats.MalformedRows()
	if malformed > 0 {
		log.Warnf("fetch logged reps: %d stored rows could not be read", malformed)
		diagnostic = fmt.Sprintf(malformedRowsDiagnostic, malformed)
	}
	return records, malformed, diagnostic
}

// weekParam reads the optional ?week= param, defaulting to the latest week with data.
func weekParam(r *http.Request, records []challenge.LogRecord) (int, error) {
	weekStr := strings.TrimSpace(r.URL.Query().Get("week"))
	if weekStr == "" {
		return challenge.CurrentWeek(records), nil
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < challenge.PreBaselineWeek {
		return 0, fmt.Errorf("%w: [%s]", errInvalidWeek, weekStr)
	}
	return week, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"percent": func(progress float64) int {
			return int(math.Round(progress * 100))
		},
	}

	pages := make(map[string]*template.Template)
	for _, page := range []string{pageIndex, pageReps, pageProfiles} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template [%s]: %w", page, err)
		}
		pages[page] = t
	}
	return pages, nil
}
