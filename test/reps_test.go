//go:build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/dashboard"
	"github.com/2beens/weeklyreps/internal/db"
	"github.com/2beens/weeklyreps/internal/middleware"
	"github.com/2beens/weeklyreps/internal/reps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) postReps(ctx context.Context, clientIP, secret, body string) *http.Response {
	t := s.T()
	req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/api/reps", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Real-Ip", clientIP)
	if secret != "" {
		req.Header.Set(middleware.SubmitSecretHeader, secret)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *IntegrationTestSuite) getJSON(ctx context.Context, path string, target any) {
	t := s.T()
	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+path, nil)
	require.NoError(t, err)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBytes, target))
}

func (s *IntegrationTestSuite) TestLogRepsAndStatus() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	for _, body := range []string{
		`{"person":"Felipe","exercise":"squat","reps":250}`,
		`{"person":"Felipe","exercise":"Squats","reps":150}`,
		`{"person":"Felipe","exercise":"dip","reps":20}`,
	} {
		resp := s.postReps(ctx, "10.1.0.1", testSubmitSecret, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	}

	var statusResp dashboard.StatusResponse
	s.getJSON(ctx, "/api/status?person=felipe", &statusResp)
	assert.Equal(t, "Felipe", statusResp.Person)
	assert.Equal(t, 2, statusResp.Week)
	assert.False(t, statusResp.WeekCompleted)
	assert.Equal(t, challenge.ExerciseStatus{RepsDone: 400, Target: 400, Completed: true, Progress: 1}, statusResp.PerExercise["squat"])
	assert.Equal(t, 20, statusResp.PerExercise["dip"].RepsDone)
	assert.Empty(t, statusResp.Diagnostic)

	// rows landed in postgres, with the week index stamped
	var count, weekIndex int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(week_index) FROM rep_log WHERE person = $1 AND exercise = $2`,
		"Felipe", "squat",
	).Scan(&count, &weekIndex)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, weekIndex)

	// and in the csv mirror
	mirrored, err := reps.NewFileMirror(s.mirrorPath, nil).FetchAll(ctx)
	require.NoError(t, err)
	felipeSquats := 0
	for _, r := range mirrored {
		if r.Person == "Felipe" && r.Exercise == "squat" {
			felipeSquats += r.Reps
		}
	}
	assert.Equal(t, 400, felipeSquats)
}

func (s *IntegrationTestSuite) TestLogFormRedirects() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	form := url.Values{
		"person":   {"Kaden"},
		"exercise": {"Pull-ups"},
		"reps":     {"12"},
		"secret":   {testSubmitSecret},
	}
	req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/log", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Real-Ip", "10.1.0.2")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", location.Path)
	assert.True(t, strings.HasPrefix(location.Query().Get("saved"), "Saved: Kaden – 12 x Pull-ups on "))

	var listResp dashboard.ListRepsResponse
	s.getJSON(ctx, "/api/reps", &listResp)
	found := false
	for _, r := range listResp.Records {
		if r.Person == "Kaden" && r.Exercise == "pull-up" && r.Reps == 12 {
			found = true
			assert.Equal(t, 2, r.WeekIndex)
		}
	}
	assert.True(t, found)
}

func (s *IntegrationTestSuite) TestSubmitWithoutSecret() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp := s.postReps(ctx, "10.1.0.3", "", `{"person":"Kaden","exercise":"dip","reps":5}`)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.postReps(ctx, "10.1.0.3", "wrong", `{"person":"Kaden","exercise":"dip","reps":5}`)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestSubmitRateLimited() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	clientIP := "10.2.0.1"
	for i := 0; i < testRateLimit; i++ {
		resp := s.postReps(ctx, clientIP, testSubmitSecret, fmt.Sprintf(`{"person":"Kaden","exercise":"push-up","reps":%d}`, i+1))
		require.NoError(t, resp.Body.Close())
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := s.postReps(ctx, clientIP, testSubmitSecret, `{"person":"Kaden","exercise":"push-up","reps":100}`)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// other clients are not affected
	resp = s.postReps(ctx, "10.2.0.2", testSubmitSecret, `{"person":"Kaden","exercise":"push-up","reps":1}`)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestWeekAPI() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	var weekResp dashboard.WeekResponse
	s.getJSON(ctx, "/api/week?date="+s.baseline.AddDate(0, 0, -1).Format(challenge.DateLayout), &weekResp)
	assert.Equal(t, challenge.PreBaselineWeek, weekResp.Week)
	assert.Empty(t, weekResp.WeekStart)

	weekResp = dashboard.WeekResponse{}
	s.getJSON(ctx, "/api/week", &weekResp)
	assert.Equal(t, 2, weekResp.Week)
	assert.Equal(t, s.baseline.AddDate(0, 0, 7).Format(challenge.DateLayout), weekResp.WeekStart)
}

func (s *IntegrationTestSuite) TestPsqlRepoEmptyTable() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	const emptyDBName = "weeklyreps_empty"
	_, err := s.DB.ExecContext(ctx, "CREATE DATABASE "+emptyDBName)
	require.NoError(t, err)

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: s.pgPort,
		DBName: emptyDBName,
	})
	require.NoError(t, err)
	defer pool.Close()

	repo := reps.NewPsqlRepo(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	records, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
