package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-refill/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"FallbackMailSubject", config.FallbackMailSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestRefillParameters pins the projection horizon and window width.
func TestRefillParameters(t *testing.T) {
	assert.Equal(t, 3, config.RoundCount)
	assert.Equal(t, 9, config.WindowLeadDays, "a window spans 10 calendar days")
	assert.Equal(t, 4, config.MinColumns)
}

func TestDefaults_Sanity(t *testing.T) {
	assert.Greater(t, config.DefaultRefreshMin, 0, "Default refresh interval must be positive")
	assert.Contains(t, config.SupportedLanguages, config.DefaultLanguage)
	assert.Contains(t, config.SupportedFormats, config.DefaultFormat)

	_, err := time.LoadLocation(config.DefaultTimezone)
	require.NoError(t, err)
}

func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Refill/"), "UserAgent must start with AppName/")
}

func TestMailBodyFallback_Placeholders(t *testing.T) {
	assert.Equal(t, 3, strings.Count(config.FallbackMailBody, "%s"), "body interpolates name, start and end")
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")

	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
	assert.Less(t, int64(config.MaxHTTPResponseSize), int64(1*1024*1024*1024), "MaxHTTPResponseSize should stay under 1GB to protect RAM")
}
