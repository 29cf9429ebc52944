package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
	"github.com/tartampluch/go-refill/internal/locale"
	"github.com/tartampluch/go-refill/internal/message"
	"github.com/tartampluch/go-refill/internal/report"
)

// cliOptions are the flags of the one-shot report mode.
type cliOptions struct {
	File   string
	URL    string
	Today  string
	Format string
	Lang   string
	Config string
}

// headless reports whether a patient list source is configured, either on
// the command line or as source_url in the settings.
func (o cliOptions) headless(s config.Settings) bool {
	return o.File != "" || o.URL != "" || s.SourceURL != ""
}

// settings loads the layered settings and applies the flag overrides.
func (o cliOptions) settings() (config.Settings, error) {
	s, err := config.LoadSettings(o.Config)
	if err != nil {
		return config.Settings{}, err
	}
	if o.Format != "" {
		s.Format = o.Format
	}
	if o.Lang != "" {
		s.Language = o.Lang
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

// syncConfig maps the source flags to the engine configuration.
func (o cliOptions) syncConfig(s config.Settings) engine.SyncConfig {
	cfg := engine.SyncConfig{AlarmTrigger: s.AlarmTrigger()}
	if o.File != "" {
		cfg.Mode = config.SourceModeLocal
		cfg.LocalPath = o.File
		return cfg
	}
	cfg.Mode = config.SourceModeWeb
	cfg.WebURL = o.URL
	if cfg.WebURL == "" {
		cfg.WebURL = s.SourceURL
	}
	cfg.WebUser = s.SourceUser
	cfg.WebPass = s.SourcePass
	return cfg
}

// clock returns the real clock, or midnight of -today in loc.
func (o cliOptions) clock(loc *time.Location) (engine.Clock, error) {
	if o.Today == "" {
		return engine.RealClock{}, nil
	}
	d, err := engine.ParseCivilDate(o.Today)
	if err != nil {
		return nil, err
	}
	return engine.FixedClock{At: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)}, nil
}

// runReport evaluates the patient list once and writes the report to out.
func runReport(ctx context.Context, opts cliOptions, s config.Settings, out io.Writer) error {
	slog.Debug(config.MsgSettingsLoaded,
		config.LogKeyComponent, config.CompSettings,
		config.LogKeyFormat, s.Format,
		config.LogKeyLang, s.Language,
		config.LogKeyTimezone, s.Timezone)

	loc, err := s.Location()
	if err != nil {
		return err
	}
	clock, err := opts.clock(loc)
	if err != nil {
		return err
	}

	composer := message.New(locale.Load().Translator(s.Language))

	gen := &engine.Generator{
		Clock:         clock,
		Fetcher:       engine.NewHTTPFetcher(),
		Location:      loc,
		FormatSummary: composer.Summary,
	}

	r, err := gen.RunSync(ctx, opts.syncConfig(s))
	if err != nil {
		return err
	}
	return report.Write(out, s.Format, r, composer)
}
