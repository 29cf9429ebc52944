package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-refill/internal/config"
)

func writePatients(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	path := filepath.Join(t.TempDir(), "patients.csv")
	require.NoError(t, os.WriteFile(path, []byte(patientsCSV), 0o600))
	return path
}

const patientsCSV = "name,contact,first_dispense_date,days\n王小明,ming@test.com,2025-01-01,28\n"

// loadSettings loads the defaults with the current environment applied.
func loadSettings(t *testing.T, opts cliOptions) config.Settings {
	t.Helper()
	s, err := opts.settings()
	require.NoError(t, err)
	return s
}

func TestHeadless(t *testing.T) {
	s := config.DefaultSettings()
	assert.False(t, cliOptions{}.headless(s))
	assert.True(t, cliOptions{File: "a.csv"}.headless(s))
	assert.True(t, cliOptions{URL: "https://example.com/a.csv"}.headless(s))

	s.SourceURL = "https://example.com/a.csv"
	assert.True(t, cliOptions{}.headless(s), "a configured source URL selects the report mode")
}

func TestSyncConfig(t *testing.T) {
	s := config.DefaultSettings()
	s.SourceUser = "pharmacist"
	s.AlarmDaysLead = 1

	local := cliOptions{File: "a.csv", URL: "https://example.com/b.csv"}.syncConfig(s)
	assert.Equal(t, config.SourceModeLocal, local.Mode, "a file wins over a URL")
	assert.Equal(t, "a.csv", local.LocalPath)
	assert.Equal(t, "-P1D", local.AlarmTrigger)

	web := cliOptions{URL: "https://example.com/b.csv"}.syncConfig(s)
	assert.Equal(t, config.SourceModeWeb, web.Mode)
	assert.Equal(t, "https://example.com/b.csv", web.WebURL)
	assert.Equal(t, "pharmacist", web.WebUser)

	s.SourceURL = "https://example.com/settings.csv"
	fromSettings := cliOptions{}.syncConfig(s)
	assert.Equal(t, config.SourceModeWeb, fromSettings.Mode)
	assert.Equal(t, "https://example.com/settings.csv", fromSettings.WebURL)

	flagWins := cliOptions{URL: "https://example.com/b.csv"}.syncConfig(s)
	assert.Equal(t, "https://example.com/b.csv", flagWins.WebURL, "-url wins over source_url")
}

func TestClock_PinsMidnightInLocation(t *testing.T) {
	loc, err := time.LoadLocation(config.DefaultTimezone)
	require.NoError(t, err)

	clock, err := cliOptions{Today: "2025-01-20"}.clock(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, loc), clock.Now())

	_, err = cliOptions{Today: "20/01/2025"}.clock(loc)
	assert.Error(t, err)
}

func TestRunReport_JSON(t *testing.T) {
	path := writePatients(t)

	opts := cliOptions{File: path, Today: "2025-01-20", Format: config.FormatJSON}

	var out bytes.Buffer
	err := runReport(context.Background(), opts, loadSettings(t, opts), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"today": "2025-01-20"`)
	assert.Contains(t, out.String(), `"name": "王小明"`)
}

func TestRunReport_SourceURLFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/p.csv", r.URL.Path)
		_, _ = w.Write([]byte(patientsCSV))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("REFILL_SOURCE_URL", srv.URL+"/p.csv")
	t.Setenv("REFILL_FORMAT", config.FormatJSON)

	opts := cliOptions{Today: "2025-01-20"}
	s := loadSettings(t, opts)
	require.True(t, opts.headless(s), "no flags but a source URL in the environment")

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), opts, s, &out))

	assert.Contains(t, out.String(), `"name": "王小明"`)
	assert.Contains(t, out.String(), `"processed": 1`)
}

func TestRunReport_ICSUsesLanguage(t *testing.T) {
	path := writePatients(t)

	opts := cliOptions{File: path, Today: "2025-01-20", Format: config.FormatICS, Lang: "en"}

	var out bytes.Buffer
	err := runReport(context.Background(), opts, loadSettings(t, opts), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, out.String(), "Refill window: 王小明 (round 1)")
}

func TestSettings_RejectsUnknownFormat(t *testing.T) {
	path := writePatients(t)

	_, err := cliOptions{File: path, Format: "xml"}.settings()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrSettings)
}
