package engine

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-refill/internal/config"
)

// SummaryFunc renders the event title of a refill window.
type SummaryFunc func(name string, round int) string

// CalendarOptions tunes the iCalendar export.
type CalendarOptions struct {
	// AlarmTrigger is an ISO-8601 duration relative to the window start
	// (e.g. "-P1D"). Empty disables alarms.
	AlarmTrigger string

	// Summary localizes event titles. nil uses config.FallbackSummary.
	Summary SummaryFunc
}

// BuildCalendar exports every projected window of every record as an all-day
// event spanning the window. DTEND is exclusive per RFC 5545, hence End+1.
// stamp is the generation instant recorded in DTSTAMP.
func BuildCalendar(records []InputRecord, stamp time.Time, opts CalendarOptions) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(stamp.UTC())

	summarize := opts.Summary
	if summarize == nil {
		summarize = func(name string, round int) string {
			return fmt.Sprintf(config.FallbackSummary, name, round)
		}
	}

	for _, r := range records {
		for _, w := range ProjectWindows(r) {
			event := windowEvent(r, w, summarize(r.Name, w.Round))
			event.Props.Set(dtStampProp)
			if opts.AlarmTrigger != "" {
				addAlarm(event, opts.AlarmTrigger, summarize(r.Name, w.Round))
			}
			cal.Children = append(cal.Children, event.Component)
		}
	}

	if len(cal.Children) == 0 {
		// A VCALENDAR without components fails encoding; clients still expect a valid feed.
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// windowEvent builds the VEVENT of one window.
func windowEvent(r InputRecord, w ReminderWindow, summary string) *ical.Event {
	event := ical.NewEvent()

	// The reminder ID already encodes name, contact, round and line.
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, ReminderID(r, w.Round), w.Round, config.ICalDomain))
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropTransp, config.ICalTransp)
	if r.ContactAddress != "" {
		event.Props.SetText(config.PropDescription, r.ContactAddress)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(w.Start)
	event.Props.Set(dtStartProp)

	dtEndProp := ical.NewProp(config.PropDTEnd)
	dtEndProp.SetDate(AddDays(w.End, 1))
	event.Props.Set(dtEndProp)

	return event
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value to avoid a VALUE=TEXT parameter on TRIGGER.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
