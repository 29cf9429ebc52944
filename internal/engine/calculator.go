package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-refill/internal/config"
)

// reminderNamespace scopes the name-based UUIDs used as reminder identifiers.
var reminderNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(config.UIDSalt+config.ICalDomain))

// ReminderWindow is the inclusive range of days during which a patient should
// pick up the next round. End is the last day covered by the current supply.
type ReminderWindow struct {
	Round int
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the window, bounds included.
func (w ReminderWindow) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// ReminderEvent is a record whose window contains today.
type ReminderEvent struct {
	// ID is stable across runs for the same (patient, round, line).
	ID     string
	Record InputRecord
	Window ReminderWindow
}

// ProjectWindows computes the reminder windows of the first RoundCount rounds.
//
// Round k covers [F_k, E_k] with E_k = F_k + D - 1; its window is
// [E_k - WindowLeadDays, E_k]. The next round is anchored on the earliest
// pickup day: F_(k+1) = E_k - WindowLeadDays.
//
// No guard exists for D = 0: the first window then ends the day before the
// first dispense. Callers reject negative durations.
func ProjectWindows(r InputRecord) [config.RoundCount]ReminderWindow {
	var windows [config.RoundCount]ReminderWindow

	dispense := r.FirstDispenseDate
	for k := range windows {
		end := AddDays(dispense, r.DurationDays-1)
		start := AddDays(end, -config.WindowLeadDays)
		windows[k] = ReminderWindow{Round: k + 1, Start: start, End: end}
		dispense = start
	}
	return windows
}

// ComputeReminders returns one event per (record, round) whose window contains today,
// in input order and, within a record, in round order.
// For short supplies (D < 20) consecutive windows overlap, and a record can
// produce several events for the same day; they are all reported.
func ComputeReminders(records []InputRecord, today time.Time) []ReminderEvent {
	day := CivilDate(today)
	events := make([]ReminderEvent, 0)

	for _, r := range records {
		for _, w := range ProjectWindows(r) {
			if !w.Contains(day) {
				continue
			}
			events = append(events, ReminderEvent{
				ID:     ReminderID(r, w.Round),
				Record: r,
				Window: w,
			})
		}
	}
	return events
}

// ReminderID derives a deterministic identifier from the patient identity,
// the round and the source line.
func ReminderID(r InputRecord, round int) string {
	key := fmt.Sprintf(config.FormatReminderKey, r.Name, r.ContactAddress, round, r.Line)
	return uuid.NewSHA1(reminderNamespace, []byte(key)).String()
}
