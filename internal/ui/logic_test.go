package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-refill/internal/config"
)

// TestApp_LoadSyncConfig_Alarm tests the conversion of UI preferences to Engine config.
// By being in package 'ui', we can test the private method 'loadSyncConfig'.
func TestApp_LoadSyncConfig_Alarm(t *testing.T) {
	a := test.NewApp()
	app := &GoRefillApp{
		App:         a,
		Preferences: a.Preferences(),
	}

	tests := []struct {
		name        string
		enabled     bool
		days        int
		wantTrigger string // Expected ISO8601 string
	}{
		{
			name:        "Disabled",
			enabled:     false,
			days:        3,
			wantTrigger: "",
		},
		{
			name:        "Start of window",
			enabled:     true,
			days:        0,
			wantTrigger: "PT0S",
		},
		{
			name:        "1 Day Before",
			enabled:     true,
			days:        1,
			wantTrigger: "-P1D",
		},
		{
			name:        "2 Days Before",
			enabled:     true,
			days:        2,
			wantTrigger: "-P2D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.Preferences.SetBool(config.PrefAlarmEnabled, tt.enabled)
			app.Preferences.SetInt(config.PrefAlarmDaysLead, tt.days)

			cfg := app.loadSyncConfig()

			assert.Equal(t, tt.wantTrigger, cfg.AlarmTrigger)
		})
	}
}
