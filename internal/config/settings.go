package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Taipei must resolve on hosts without a zoneinfo database.

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrSettings is the sentinel wrapped by every settings validation failure.
var ErrSettings = errors.New(ErrInvalidSettings)

// Settings holds the headless (CLI) configuration.
// The tray application keeps its own state in Fyne preferences instead.
type Settings struct {
	// Timezone is the IANA zone used to derive "today".
	Timezone string `koanf:"timezone"`

	// Language selects the message template (zh-TW, en).
	Language string `koanf:"language"`

	// Port is the default feed port of the tray application, used until a
	// port is saved from the settings window.
	Port string `koanf:"port"`

	// Format is the CLI report format.
	Format string `koanf:"format"`

	// SourceURL, when set, selects the one-shot report mode without -url.
	SourceURL  string `koanf:"source_url"`
	SourceUser string `koanf:"source_user"`
	SourcePass string `koanf:"source_pass"`

	// AlarmDaysLead adds a VALARM this many days before each window start.
	// Negative disables alarms.
	AlarmDaysLead int `koanf:"alarm_days_lead"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Timezone:      DefaultTimezone,
		Language:      DefaultLanguage,
		Port:          DefaultPort,
		Format:        DefaultFormat,
		AlarmDaysLead: -1,
	}
}

// LoadSettings layers defaults, an optional YAML file and REFILL_* environment variables.
// Order of precedence (low -> high):
//  1. DefaultSettings()
//  2. YAML file at path, or at $REFILL_CONFIG when path is empty
//  3. env (REFILL_TIMEZONE, REFILL_SOURCE_URL, ...)
func LoadSettings(path string) (Settings, error) {
	k := koanf.New(KoanfDelim)

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", ErrLoadSettings, err)
		}
	}

	// REFILL_SOURCE_URL -> source_url. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, KoanfDelim, func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrLoadSettings, err)
	}

	s := DefaultSettings()
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: KoanfTag}); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrLoadSettings, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field that has a closed set of values.
func (s Settings) Validate() error {
	if _, err := s.Location(); err != nil {
		return err
	}
	if err := ValidatePort(s.Port); err != nil {
		return fmt.Errorf("%w: %v", ErrSettings, err)
	}
	if !slices.Contains(SupportedFormats, s.Format) {
		return fmt.Errorf("%w: %s: %q", ErrSettings, ErrUnknownFormat, s.Format)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%w: %s: %q", ErrSettings, ErrUnknownLanguage, s.Language)
	}
	return nil
}

// Location resolves the configured timezone.
func (s Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSettings, ErrTimezone, err)
	}
	return loc, nil
}

// AlarmTrigger returns the ISO-8601 VALARM trigger for the configured lead time,
// or "" when alarms are disabled.
func (s Settings) AlarmTrigger() string {
	return AlarmTriggerForDays(s.AlarmDaysLead)
}

// AlarmTriggerForDays maps a lead in days to an ISO-8601 trigger relative to DTSTART.
func AlarmTriggerForDays(days int) string {
	switch {
	case days < 0:
		return ""
	case days == 0:
		return AlarmTriggerStartOfDay
	default:
		return fmt.Sprintf(FormatAlarmTriggerDays, days)
	}
}

// ValidatePort checks that s is a TCP port in range.
func ValidatePort(s string) error {
	if s == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
