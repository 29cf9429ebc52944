// Package message renders the texts sent to patients due for a refill and
// the mailto links that pre-fill them.
package message

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
	"github.com/tartampluch/go-refill/internal/locale"
)

// Composer renders localized reminder texts. The zero value and a nil
// Translator produce the built-in Traditional Chinese templates.
type Composer struct {
	T *locale.Translator
}

// New returns a composer for the translator.
func New(t *locale.Translator) *Composer {
	return &Composer{T: t}
}

// FormatDate renders a civil date with the localized short pattern.
func (c *Composer) FormatDate(d time.Time) string {
	layout := config.DateFormatDisplay
	if c != nil && c.T != nil {
		if l := c.T.Msg(config.TKeyFormatDate); l != config.TKeyFormatDate {
			layout = l
		}
	}
	return d.Format(layout)
}

// Subject returns the mail subject.
func (c *Composer) Subject() string {
	if c != nil && c.T != nil {
		if msg, err := c.T.Format(config.TKeyMailSubject, nil); err == nil {
			return msg
		}
	}
	return config.FallbackMailSubject
}

// Body returns the mail body for one reminder.
func (c *Composer) Body(ev engine.ReminderEvent) string {
	start := c.FormatDate(ev.Window.Start)
	end := c.FormatDate(ev.Window.End)

	if c != nil && c.T != nil {
		msg, err := c.T.Format(config.TKeyMailBody, map[string]any{
			"Name":  ev.Record.Name,
			"Start": start,
			"End":   end,
		})
		if err == nil {
			return msg
		}
	}
	return fmt.Sprintf(config.FallbackMailBody, ev.Record.Name, start, end)
}

// MailtoLink returns mailto:<contact>?subject=...&body=... with every
// component percent-encoded and spaces written as %20.
// The contact address is used as-is; no validation is applied.
func (c *Composer) MailtoLink(ev engine.ReminderEvent) string {
	var b strings.Builder
	b.WriteString(config.MailtoScheme)
	b.WriteString(ev.Record.ContactAddress)
	b.WriteString(config.MailtoSubject)
	b.WriteString(encode(c.Subject()))
	b.WriteString(config.MailtoBody)
	b.WriteString(encode(c.Body(ev)))
	return b.String()
}

// Summary returns the calendar event title of a window.
func (c *Composer) Summary(name string, round int) string {
	if c != nil && c.T != nil {
		msg, err := c.T.Format(config.TKeyEvtSummary, map[string]any{
			"Name":  name,
			"Round": round,
		})
		if err == nil {
			return msg
		}
	}
	return fmt.Sprintf(config.FallbackSummary, name, round)
}

// Window renders "start – end".
func (c *Composer) Window(w engine.ReminderWindow) string {
	return c.FormatDate(w.Start) + config.WindowSeparator + c.FormatDate(w.End)
}

// encode percent-encodes s for a URI query component. Mail clients do not
// decode "+" as a space in mailto links, so spaces become %20.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), config.QuerySpace, config.PercentEncodedSP)
}
