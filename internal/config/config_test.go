package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
host = "localhost"
port = 8080
log_level = "debug"
log_to_stdout = true
storage = "memory"
mirror_path = "/tmp/weeklyreps-mirror.csv"

[development.challenge]
baseline = "2025-12-15"
timezone = "America/New_York"
roster = ["Felipe", "Kaden"]

[[development.challenge.exercises]]
key = "squat"
display_name = "Squats"
weekly_target = 400
order = 1

[[development.challenge.exercises]]
key = "push-up"
display_name = "Push-ups"
weekly_target = 300
order = 2

[production]
host = "0.0.0.0"
port = 9000
storage = "sheets"
sheets_spreadsheet_id = "sheet-id"
sheets_cache_ttl_seconds = 5

[production.challenge]
roster = ["Felipe", "Kaden"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := config.Load("dev", writeConfig(t, testConfigToml))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.StorageMemory, cfg.Storage)
	assert.Equal(t, "/tmp/weeklyreps-mirror.csv", cfg.MirrorPath)
	assert.Equal(t, "Sheet1", cfg.SheetsRange)
	assert.Equal(t, 10, cfg.StorageTimeoutSeconds)

	setup, err := cfg.Challenge.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"Felipe", "Kaden"}, setup.Roster)
	assert.Equal(t, []string{"squat", "push-up"}, setup.Targets.Keys())
	assert.Equal(t, "America/New_York", setup.Calendar.Location().String())
	assert.Equal(t, "2025-12-15", setup.Calendar.Baseline().Format(challenge.DateLayout))
}

func TestLoad_ProductionDefaults(t *testing.T) {
	cfg, err := config.Load("production", writeConfig(t, testConfigToml))
	require.NoError(t, err)

	assert.Equal(t, config.StorageSheets, cfg.Storage)
	assert.Equal(t, 5, cfg.SheetsCacheTTLSeconds)

	setup, err := cfg.Challenge.Build()
	require.NoError(t, err)
	assert.Equal(t, 1000, setup.Targets.TotalWeeklyReps())
	assert.Equal(t, "UTC", setup.Calendar.Location().String())
	assert.Equal(t, "2025-12-15", setup.Calendar.Baseline().Format(challenge.DateLayout))
}

func TestLoad_UnknownEnv(t *testing.T) {
	_, err := config.Load("staging", writeConfig(t, testConfigToml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("dev", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoad_InvalidConfigs(t *testing.T) {
	testCases := []struct {
		name   string
		toml   string
		errMsg string
	}{
		{
			name:   "no port",
			toml:   "[development]\n[development.challenge]\nroster = [\"A\"]\n",
			errMsg: "invalid port",
		},
		{
			name:   "unknown storage",
			toml:   "[development]\nport = 1\nstorage = \"excel\"\n[development.challenge]\nroster = [\"A\"]\n",
			errMsg: "unknown storage: excel",
		},
		{
			name:   "sheets without id",
			toml:   "[development]\nport = 1\nstorage = \"sheets\"\n[development.challenge]\nroster = [\"A\"]\n",
			errMsg: "sheets_spreadsheet_id not set",
		},
		{
			name:   "empty roster",
			toml:   "[development]\nport = 1\n",
			errMsg: "roster empty",
		},
		{
			name:   "duplicate person",
			toml:   "[development]\nport = 1\n[development.challenge]\nroster = [\"A\", \"a\"]\n",
			errMsg: "roster contains [a] twice",
		},
		{
			name:   "bad baseline",
			toml:   "[development]\nport = 1\n[development.challenge]\nbaseline = \"15/12/2025\"\nroster = [\"A\"]\n",
			errMsg: "baseline",
		},
		{
			name:   "bad timezone",
			toml:   "[development]\nport = 1\n[development.challenge]\ntimezone = \"Mars/Olympus\"\nroster = [\"A\"]\n",
			errMsg: "timezone",
		},
		{
			name: "non positive target",
			toml: "[development]\nport = 1\n[development.challenge]\nroster = [\"A\"]\n" +
				"[[development.challenge.exercises]]\nkey = \"squat\"\nweekly_target = 0\norder = 1\n",
			errMsg: "weekly target must be positive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load("dev", writeConfig(t, tc.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
