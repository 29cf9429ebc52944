package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-refill/internal/config"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")

	s, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Taipei", loc.String())
}

func TestLoadSettings_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refill.yaml")
	content := "timezone: UTC\nlanguage: en\nformat: json\nport: 19000\nsource_url: https://files.example.com/patients.csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Environment wins over the file.
	t.Setenv("REFILL_FORMAT", "ics")
	t.Setenv("REFILL_ALARM_DAYS_LEAD", "2")

	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "UTC", s.Timezone)
	assert.Equal(t, "en", s.Language)
	assert.Equal(t, "19000", s.Port)
	assert.Equal(t, "https://files.example.com/patients.csv", s.SourceURL)
	assert.Equal(t, config.FormatICS, s.Format)
	assert.Equal(t, 2, s.AlarmDaysLead)
	assert.Equal(t, "-P2D", s.AlarmTrigger())
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := config.LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrLoadSettings)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Settings)
	}{
		{"UnknownTimezone", func(s *config.Settings) { s.Timezone = "Mars/Olympus" }},
		{"PortOutOfRange", func(s *config.Settings) { s.Port = "70000" }},
		{"PortNotNumber", func(s *config.Settings) { s.Port = "http" }},
		{"UnknownFormat", func(s *config.Settings) { s.Format = "pdf" }},
		{"UnknownLanguage", func(s *config.Settings) { s.Language = "fr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrSettings)
		})
	}
}

func TestAlarmTriggerForDays(t *testing.T) {
	assert.Equal(t, "", config.AlarmTriggerForDays(-1), "negative disables the alarm")
	assert.Equal(t, config.AlarmTriggerStartOfDay, config.AlarmTriggerForDays(0))
	assert.Equal(t, "-P3D", config.AlarmTriggerForDays(3))
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, config.ValidatePort("18081"))
	assert.EqualError(t, config.ValidatePort(""), config.ErrPortRequired)
	assert.EqualError(t, config.ValidatePort("abc"), config.ErrPortNumber)
	assert.EqualError(t, config.ValidatePort("0"), config.ErrPortRange)
}
