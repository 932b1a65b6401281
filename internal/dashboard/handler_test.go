package dashboard_test

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/dashboard"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	testBaseline = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	// a tuesday in week 2
	testNow = time.Date(2025, 12, 23, 10, 30, 0, 0, time.UTC)
)

func testChallenge(t *testing.T) challenge.Challenge {
	t.Helper()
	targets, err := challenge.NewTargetConfig(challenge.DefaultTargets()...)
	require.NoError(t, err)
	return challenge.Challenge{
		Calendar: challenge.NewCalendar(testBaseline, time.UTC),
		Targets:  targets,
		Roster:   []string{"Felipe", "Kaden"},
	}
}

func rec(person, exercise string, reps, daysAfterBaseline int) challenge.LogRecord {
	cal := challenge.NewCalendar(testBaseline, time.UTC)
	return challenge.NewLogRecord(cal, person, exercise, reps, testBaseline.AddDate(0, 0, daysAfterBaseline))
}

// felipe completes week 2, kaden does not
func testRecords() []challenge.LogRecord {
	return []challenge.LogRecord{
		rec("Felipe", "squat", 120, 0),
		rec("Kaden", "push-up", 80, 0),
		rec("Felipe", "squat", 400, 7),
		rec("Felipe", "push-up", 300, 8),
		rec("Felipe", "dip", 200, 8),
		rec("Felipe", "pull-up", 100, 8),
		rec("Kaden", "squat", 399, 8),
	}
}

func newTestRouter(t *testing.T, repo *MockrepsRepo, submitMiddlewares ...mux.MiddlewareFunc) *mux.Router {
	t.Helper()
	handler, err := dashboard.NewHandler(repo, testChallenge(t), false)
	require.NoError(t, err)
	handler.SetNow(func() time.Time { return testNow })

	r := mux.NewRouter()
	handler.SetupRoutes(r, submitMiddlewares...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Index(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords(), nil)

	rr := serve(newTestRouter(t, repo), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "1000 reps a week")
	assert.Contains(t, body, "Week 2 standings")
	assert.Contains(t, body, "from 2025-12-22")
	assert.Contains(t, body, "400 / 400")
	assert.Contains(t, body, "399 / 400")
	assert.Contains(t, body, "Week completed")
	assert.Contains(t, body, "Week not completed")
	assert.Contains(t, body, `<option value="push-up">Push-ups</option>`)
	assert.NotContains(t, body, "Storage error")

	// display order
	assert.Less(t, strings.Index(body, "Squats"), strings.Index(body, "Pull-ups"))
}

func TestHandler_Index_WeekParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords(), nil).Times(2)
	router := newTestRouter(t, repo)

	rr := serve(router, httptest.NewRequest(http.MethodGet, "/?week=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Week 1 standings")
	assert.Contains(t, rr.Body.String(), "120 / 400")

	rr = serve(router, httptest.NewRequest(http.MethodGet, "/?week=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Index_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().FetchAll(gomock.Any()).Return(nil, errors.New("sheets unavailable"))

	rr := serve(newTestRouter(t, repo), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Storage error: logged reps could not be loaded, showing no data")
	assert.Contains(t, body, "Week 0 standings")
	assert.Contains(t, body, "0 / 400")
	assert.NotContains(t, body, "sheets unavailable")
}

func TestHandler_LogForm(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	expected := rec("Felipe", "squat", 25, 8)
	repo.EXPECT().Append(gomock.Any(), expected).Return(nil)

	form := url.Values{"person": {"felipe"}, "exercise": {"Squats"}, "reps": {"25"}}
	req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := serve(newTestRouter(t, repo), req)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", location.Path)
	assert.Equal(t, "Saved: Felipe – 25 x Squats on 2025-12-23", location.Query().Get("saved"))
}

func TestHandler_LogForm_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		form     url.Values
		expected string
	}{
		{
			name:     "unknown person",
			form:     url.Values{"person": {"Serj"}, "exercise": {"squat"}, "reps": {"10"}},
			expected: "Unknown name, pick one from the list.",
		},
		{
			name:     "unknown exercise",
			form:     url.Values{"person": {"Kaden"}, "exercise": {"burpee"}, "reps": {"10"}},
			expected: "Unknown exercise, pick one from the list.",
		},
		{
			name:     "zero reps",
			form:     url.Values{"person": {"Kaden"}, "exercise": {"dip"}, "reps": {"0"}},
			expected: "Reps must be at least 1.",
		},
		{
			name:     "reps not a number",
			form:     url.Values{"person": {"Kaden"}, "exercise": {"dip"}, "reps": {"ten"}},
			expected: "Reps must be a whole number.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := NewMockrepsRepo(ctrl)
			// only the re-rendered page reads, nothing is appended
			repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords(), nil)

			req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			rr := serve(newTestRouter(t, repo), req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.expected)
		})
	}
}

func TestHandler_LogForm_AppendFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("quota"))
	repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords(), nil)

	form := url.Values{"person": {"Kaden"}, "exercise": {"dip"}, "reps": {"10"}}
	req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := serve(newTestRouter(t, repo), req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Saving failed, please try again.")
}

func TestHandler_SubmitMiddlewareGuardsOnlySubmissions(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords(), nil)

	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "denied", http.StatusUnauthorized)
		})
	}
	router := newTestRouter(t, repo, deny)

	req := httptest.NewRequest(http.MethodPost, "/api/reps", strings.NewReader(`{"person":"Kaden","exercise":"dip","reps":1}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/log", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/api/reps", nil)).Code)
}

func TestHandler_RepsPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	gomock.InOrder(
		repo.EXPECT().FetchAll(gomock.Any()).Return([]challenge.LogRecord{}, nil),
		repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords()[:2], nil),
	)
	router := newTestRouter(t, repo)

	rr := serve(router, httptest.NewRequest(http.MethodGet, "/reps", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No reps logged yet.")

	rr = serve(router, httptest.NewRequest(http.MethodGet, "/reps", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<td>Kaden</td><td>push-up</td><td>80</td><td>2025-12-15</td><td>1</td>")
	assert.NotContains(t, rr.Body.String(), "No reps logged yet.")
}

func TestHandler_RepsCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords()[:2], nil)

	rr := serve(newTestRouter(t, repo), httptest.NewRequest(http.MethodGet, "/reps.csv", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "exercise", "reps", "date", "week_index"},
		{"Felipe", "squat", "120", "2025-12-15", "1"},
		{"Kaden", "push-up", "80", "2025-12-15", "1"},
	}, rows)
}

func TestHandler_ProfilesPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockrepsRepo(ctrl)
	repo.EXPECT().FetchAll(gomock.Any()).Return(testRecords(), nil)

	rr := serve(newTestRouter(t, repo), httptest.NewRequest(http.MethodGet, "/profiles", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "1120 reps in total")
	assert.Contains(t, body, "<tr><td>Squats</td><td>520</td></tr>")
	assert.Contains(t, body, "<tr><td>2</td><td>1000</td></tr>")
}
