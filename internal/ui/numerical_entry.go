package ui

import (
	"strconv"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
// Used for the refresh interval, the feed port and the alarm lead days.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops every rune that is not 0-9.
// Pasted text bypasses this filter; IntValue and the Validator cover that case.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// IntValue parses the text. ok is false when the field is empty or not a number.
func (e *NumericalEntry) IntValue() (value int, ok bool) {
	v, err := strconv.Atoi(e.Text)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SetIntValue replaces the text with v.
func (e *NumericalEntry) SetIntValue(v int) {
	e.SetText(strconv.Itoa(v))
}
