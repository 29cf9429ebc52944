// Package report prints an evaluation for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
	"github.com/tartampluch/go-refill/internal/message"
)

// Reminder is the JSON shape of one due reminder.
type Reminder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Round       int    `json:"round"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Line        int    `json:"line"`
	Link        string `json:"link"`
}

// Skipped is the JSON shape of a dropped row.
type Skipped struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Document is the JSON report.
type Document struct {
	Today     string       `json:"today"`
	Stats     engine.Stats `json:"stats"`
	Reminders []Reminder   `json:"reminders"`
	Skipped   []Skipped    `json:"skipped"`
}

// Write renders r in format. Table and JSON output carry a mailto link per reminder.
func Write(w io.Writer, format string, r *engine.Report, c *message.Composer) error {
	var err error
	switch format {
	case config.FormatTable:
		err = writeTable(w, r, c)
	case config.FormatJSON:
		err = writeJSON(w, r, c)
	case config.FormatICS:
		_, err = w.Write(r.Calendar)
	case config.FormatVCF:
		_, err = w.Write(r.Contacts)
	default:
		return fmt.Errorf("%s: %q", config.ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteReport, err)
	}

	slog.Debug(config.MsgReportDone,
		config.LogKeyComponent, config.CompReport,
		config.LogKeyFormat, format,
		config.LogKeyCount, len(r.Events))
	return nil
}

func writeTable(w io.Writer, r *engine.Report, c *message.Composer) error {
	if _, err := fmt.Fprintf(w, config.ReportSummary,
		r.Today.Format(config.DateFormatISO),
		r.Stats.Processed, r.Stats.RemindersFound, r.Stats.Skipped); err != nil {
		return err
	}

	if len(r.Events) == 0 {
		_, err := fmt.Fprintln(w, config.ReportNoReminders)
		return err
	}

	tw := tabwriter.NewWriter(w, config.ReportTabMinWidth, config.ReportTabWidth,
		config.ReportTabPadding, config.ReportTabPadChar, config.ReportTabwriterFlg)
	if _, err := fmt.Fprintln(tw, config.ReportHeader); err != nil {
		return err
	}
	for _, ev := range r.Events {
		if _, err := fmt.Fprintf(tw, config.ReportRow,
			ev.Record.Name,
			ev.Window.Round,
			c.FormatDate(ev.Window.Start),
			c.FormatDate(ev.Window.End),
			ev.Record.ContactAddress,
			c.MailtoLink(ev)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, r *engine.Report, c *message.Composer) error {
	doc := Document{
		Today:     r.Today.Format(config.DateFormatISO),
		Stats:     r.Stats,
		Reminders: make([]Reminder, 0, len(r.Events)),
		Skipped:   make([]Skipped, 0, len(r.Skipped)),
	}
	for _, ev := range r.Events {
		doc.Reminders = append(doc.Reminders, Reminder{
			ID:          ev.ID,
			Name:        ev.Record.Name,
			Contact:     ev.Record.ContactAddress,
			Round:       ev.Window.Round,
			WindowStart: ev.Window.Start.Format(config.DateFormatISO),
			WindowEnd:   ev.Window.End.Format(config.DateFormatISO),
			Line:        ev.Record.Line,
			Link:        c.MailtoLink(ev),
		})
	}
	for _, s := range r.Skipped {
		doc.Skipped = append(doc.Skipped, Skipped{Line: s.Line, Reason: s.Reason})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", config.ReportJSONIndent)
	return enc.Encode(doc)
}
