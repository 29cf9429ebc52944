package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-refill/internal/config"
)

// SyncConfig contains all parameters required to acquire and evaluate a patient list.
type SyncConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Path to the .csv/.txt/.xlsx file
	WebURL    string // HTTP(S) URL of the published list
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password

	// AlarmTrigger is an ISO-8601 duration for calendar alarms (e.g. "-P1D").
	AlarmTrigger string
}

// Stats is the aggregate shown next to the reminder list.
type Stats struct {
	Processed      int `json:"processed"`
	RemindersFound int `json:"reminders_found"`
	Skipped        int `json:"skipped"`
}

// Report is the complete, immutable result of one evaluation.
type Report struct {
	Today   time.Time
	Records []InputRecord
	Events  []ReminderEvent
	Skipped []SkippedRow
	Stats   Stats

	// Calendar is the iCalendar export of every projected window.
	Calendar []byte

	// Contacts holds the vCards of the patients due today.
	Contacts []byte
}

// Evaluate parses text and computes the reminders due on today.
// It is a pure function: every call recomputes everything from its inputs.
func Evaluate(text string, today time.Time) Report {
	parsed := Parse(text)
	events := ComputeReminders(parsed.Records, today)

	return Report{
		Today:   CivilDate(today),
		Records: parsed.Records,
		Events:  events,
		Skipped: parsed.Skipped,
		Stats: Stats{
			Processed:      len(parsed.Records),
			RemindersFound: len(events),
			Skipped:        len(parsed.Skipped),
		},
	}
}

// Generator acquires a patient list and turns it into a Report with exports.
type Generator struct {
	Clock   Clock        // Interface for time mocking.
	Fetcher SheetFetcher // Interface for network abstraction.

	// Location is the civil timezone "today" is taken in. nil means UTC.
	Location *time.Location

	// FormatSummary allows the UI to inject localized calendar titles.
	FormatSummary SummaryFunc
}

// RunSync executes the acquire, decode, evaluate and export pipeline.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*Report, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, name, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(reader, config.MaxSourceSize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
	}

	text, err := DecodeSource(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSourceDecode, err)
	}

	report, err := g.Evaluate(text)
	if err != nil {
		return nil, err
	}
	report.Calendar, err = BuildCalendar(report.Records, g.Clock.Now(), CalendarOptions{
		AlarmTrigger: cfg.AlarmTrigger,
		Summary:      g.FormatSummary,
	})
	if err != nil {
		return nil, err
	}

	log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return report, nil
}

// Evaluate computes the report for text using the generator's clock and
// timezone, and attaches the contact export. Skipped rows and due reminders
// are logged individually.
func (g *Generator) Evaluate(text string) (*Report, error) {
	today := Today(g.Clock, g.Location)
	report := Evaluate(text, today)

	for _, s := range report.Skipped {
		slog.Debug(config.MsgSkippedRow,
			config.LogKeyComponent, config.CompParser,
			config.LogKeyLine, s.Line,
			config.LogKeyReason, s.Reason)
	}
	for _, ev := range report.Events {
		slog.Info(config.MsgReminderDue,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyName, ev.Record.Name,
			config.LogKeyRound, ev.Window.Round,
			config.LogKeyStart, ev.Window.Start.Format(config.DateFormatISO),
			config.LogKeyEnd, ev.Window.End.Format(config.DateFormatISO))
	}

	contacts, err := EncodeContacts(report.Events)
	if err != nil {
		return nil, err
	}
	report.Contacts = contacts

	g.logSuccess(report)
	return &report, nil
}

// acquireStream opens the configured source and returns the name used to pick a decoder.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, string, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, "", errors.New(config.ErrLocalPathEmpty)
		}
		f, err := os.Open(cfg.LocalPath)
		if err != nil {
			return nil, "", err
		}
		return f, cfg.LocalPath, nil
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, "", errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, "", errors.New(config.ErrFetcherMissing)
		}
		rc, announced, err := g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
		if err != nil {
			return nil, "", err
		}
		return rc, remoteName(cfg.WebURL, announced), nil
	default:
		return nil, "", fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// remoteName picks the name that selects the decoder of a download.
// A supported extension in the URL path wins; published sheet links such as
// ".../export?format=xlsx" carry none, so the name the server announced is used.
func remoteName(rawURL, announced string) string {
	var p string
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if slices.Contains(config.SourceExtensions, strings.ToLower(path.Ext(p))) || announced == "" {
		return p
	}
	return announced
}

// logSuccess logs the final statistics of the evaluation.
func (g *Generator) logSuccess(r Report) {
	slog.Info(config.MsgEvalSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyToday, r.Today.Format(config.DateFormatISO),
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyProcessed, r.Stats.Processed),
			slog.Int(config.LogKeyFound, r.Stats.RemindersFound),
			slog.Int(config.LogKeySkipped, r.Stats.Skipped),
		),
	)
}
