package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/telemetry/tracing"
	"github.com/2beens/weeklyreps/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type AddRepsRequest struct {
	Person   string `json:"person"`
	Exercise string `json:"exercise"`
	Reps     int    `json:"reps"`
}

type AddRepsResponse struct {
	Record  challenge.LogRecord `json:"record"`
	Message string              `json:"message"`
}

type ListRepsResponse struct {
	Records    []challenge.LogRecord `json:"records"`
	Diagnostic string                `json:"diagnostic,omitempty"`
}

type StandingsResponse struct {
	Week       int              `json:"week"`
	WeekStart  string           `json:"weekStart,omitempty"`
	Standings  []PersonStanding `json:"standings"`
	Diagnostic string           `json:"diagnostic,omitempty"`
}

type StatusResponse struct {
	challenge.WeekStatus
	Exercises  []challenge.ExerciseProgress `json:"exercises"`
	Diagnostic string                       `json:"diagnostic,omitempty"`
}

type ProfilesResponse struct {
	Profiles   []ProfileView `json:"profiles"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

type WeekResponse struct {
	Date      string `json:"date"`
	Week      int    `json:"week"`
	WeekStart string `json:"weekStart,omitempty"`
}

func (handler *Handler) HandleAddReps(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.addReps")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddRepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add reps, unmarshal json params: %s", err)
		http.Error(w, "add reps failed, invalid json", http.StatusBadRequest)
		return
	}

	record, err := handler.challenge.NewRecord(req.Person, req.Exercise, req.Reps, handler.now())
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("person", record.Person), attribute.Int("week", record.WeekIndex))

	if err := handler.repo.Append(ctx, record); err != nil {
		log.Errorf("add reps, append record for [%s]: %s", record.Person, err)
		http.Error(w, "error, failed to save reps", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, http.StatusCreated, AddRepsResponse{
		Record:  record,
		Message: handler.savedMessage(record),
	})
}

func (handler *Handler) HandleListReps(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.listReps")
	defer span.End()

	records, _, diagnostic := handler.loadRecords(ctx)
	handler.writeJSON(w, http.StatusOK, ListRepsResponse{
		Records:    records,
		Diagnostic: diagnostic,
	})
}

func (handler *Handler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.standings")
	defer span.End()

	records, malformed, diagnostic := handler.loadRecords(ctx)
	week, err := weekParam(r, records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.writeJSON(w, http.StatusOK, StandingsResponse{
		Week:       week,
		WeekStart:  handler.weekStart(week),
		Standings:  handler.standings(records, malformed, week),
		Diagnostic: diagnostic,
	})
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.status")
	defer span.End()

	person, err := handler.challenge.Person(r.URL.Query().Get("person"))
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	records, malformed, diagnostic := handler.loadRecords(ctx)
	week, err := weekParam(r, records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := handler.evaluate(records, malformed, person, week)
	if status.Skipped > 0 {
		log.Warnf("status for [%s], week %d: %d invalid records skipped", person, week, status.Skipped)
	}
	handler.writeJSON(w, http.StatusOK, StatusResponse{
		WeekStatus: status,
		Exercises:  status.Ordered(handler.challenge.Targets),
		Diagnostic: diagnostic,
	})
}

func (handler *Handler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.profiles")
	defer span.End()

	records, _, diagnostic := handler.loadRecords(ctx)
	handler.writeJSON(w, http.StatusOK, ProfilesResponse{
		Profiles:   handler.profiles(records),
		Diagnostic: diagnostic,
	})
}

// HandleWeek maps ?date=YYYY-MM-DD (default: today) to its week index.
func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.week")
	defer span.End()

	date := handler.challenge.Calendar.Today(handler.now())
	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		parsed, err := challenge.ParseDate(dateStr)
		if err != nil {
			http.Error(w, "error, invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	week := handler.challenge.Calendar.WeekOf(date)
	handler.writeJSON(w, http.StatusOK, WeekResponse{
		Date:      date.Format(challenge.DateLayout),
		Week:      week,
		WeekStart: handler.weekStart(week),
	})
}

func (handler *Handler) writeJSON(w http.ResponseWriter, status int, resp any) {
	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "error, failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, status)
}
