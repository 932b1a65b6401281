package dashboard

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/reps"
	"github.com/2beens/weeklyreps/internal/telemetry/tracing"
	"github.com/2beens/weeklyreps/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	pageIndex    = "index.html"
	pageReps     = "reps.html"
	pageProfiles = "profiles.html"
)

type page struct {
	Title      string
	Diagnostic string
}

type indexPage struct {
	page
	Flash           string
	Error           string
	Week            int
	WeekStart       string
	TotalWeeklyReps int
	Roster          []string
	Exercises       []challenge.Target
	Standings       []PersonStanding
	SecretRequired  bool
}

type repsPage struct {
	page
	Records []challenge.LogRecord
}

type profilesPage struct {
	page
	Profiles []ProfileView
}

func (handler *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	handler.renderIndex(w, r, http.StatusOK, r.URL.Query().Get("saved"), "")
}

func (handler *Handler) renderIndex(w http.ResponseWriter, r *http.Request, status int, flash, errMsg string) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.index")
	defer span.End()

	records, malformed, diagnostic := handler.loadRecords(ctx)
	week, err := weekParam(r, records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("week", week))

	handler.render(w, pageIndex, status, indexPage{
		page:            page{Title: "Standings", Diagnostic: diagnostic},
		Flash:           flash,
		Error:           errMsg,
		Week:            week,
		WeekStart:       handler.weekStart(week),
		TotalWeeklyReps: handler.challenge.Targets.TotalWeeklyReps(),
		Roster:          handler.challenge.Roster,
		Exercises:       handler.challenge.Targets.Targets(),
		Standings:       handler.standings(records, malformed, week),
		SecretRequired:  handler.secretRequired,
	})
}

// HandleLogForm saves a form submission and redirects back to the standings,
// so a page reload does not submit the same reps again.
func (handler *Handler) HandleLogForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.logForm")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	repsDone, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("reps")))
	if err != nil {
		handler.renderIndex(w, r, http.StatusBadRequest, "", "Reps must be a whole number.")
		return
	}

	record, err := handler.challenge.NewRecord(r.PostForm.Get("person"), r.PostForm.Get("exercise"), repsDone, handler.now())
	if err != nil {
		log.Debugf("log form, invalid submission: %s", err)
		handler.renderIndex(w, r, http.StatusBadRequest, "", submissionErrorMessage(err))
		return
	}

	if err := handler.repo.Append(ctx, record); err != nil {
		log.Errorf("log form, append record for [%s]: %s", record.Person, err)
		handler.renderIndex(w, r, http.StatusInternalServerError, "", "Saving failed, please try again.")
		return
	}

	log.Debugf("reps logged: %s %d x %s, week %d", record.Person, record.Reps, record.Exercise, record.WeekIndex)
	http.Redirect(w, r, "/?saved="+url.QueryEscape(handler.savedMessage(record)), http.StatusSeeOther)
}

func (handler *Handler) HandleRepsPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.reps")
	defer span.End()

	records, _, diagnostic := handler.loadRecords(ctx)
	handler.render(w, pageReps, http.StatusOK, repsPage{
		page:    page{Title: "All logged reps", Diagnostic: diagnostic},
		Records: records,
	})
}

func (handler *Handler) HandleRepsCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.repsCsv")
	defer span.End()

	records, err := handler.repo.FetchAll(ctx)
	if err != nil {
		log.Errorf("reps csv, fetch logged reps: %s", err)
		http.Error(w, "failed to load logged reps", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(reps.Header); err != nil {
		http.Error(w, "failed to write csv", http.StatusInternalServerError)
		return
	}
	for _, rec := range records {
		if err := writer.Write(reps.RecordToRow(rec)); err != nil {
			http.Error(w, "failed to write csv", http.StatusInternalServerError)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		http.Error(w, "failed to write csv", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="weekly-reps.csv"`)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.CSV, buf.Bytes())
}

func (handler *Handler) HandleProfilesPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.profiles")
	defer span.End()

	records, _, diagnostic := handler.loadRecords(ctx)
	handler.render(w, pageProfiles, http.StatusOK, profilesPage{
		page:     page{Title: "Profiles", Diagnostic: diagnostic},
		Profiles: handler.profiles(records),
	})
}

func (handler *Handler) render(w http.ResponseWriter, name string, status int, data any) {
	var buf bytes.Buffer
	if err := handler.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Errorf("render [%s]: %s", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), status)
}

func submissionErrorMessage(err error) string {
	switch {
	case errors.Is(err, challenge.ErrUnknownPerson):
		return "Unknown name, pick one from the list."
	case errors.Is(err, challenge.ErrUnknownExercise):
		return "Unknown exercise, pick one from the list."
	case errors.Is(err, challenge.ErrInvalidRecord):
		return "Reps must be at least 1."
	default:
		return "Invalid submission."
	}
}
