package ui_test

import (
	"testing"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
	"github.com/tartampluch/go-refill/internal/ui"
)

func TestNumericalEntry_TypedRune(t *testing.T) {
	// Initialize the custom widget using Fyne's test infrastructure.
	entry := ui.NewNumericalEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	tests := []struct {
		name     string
		input    rune
		accepted bool
	}{
		{"Digit_Zero", '0', true},
		{"Digit_Nine", '9', true},
		{"Digit_Five", '5', true},
		{"Letter_a", 'a', false},
		{"Letter_Z", 'Z', false},
		{"Symbol_Dash", '-', false},
		{"Symbol_Space", ' ', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear previous content
			entry.SetText("")

			// Simulate typing
			test.Type(entry, string(tt.input))

			got := entry.Text
			if tt.accepted {
				if got != string(tt.input) {
					t.Errorf("expected input %q to be accepted, got text %q", tt.input, got)
				}
			} else {
				if got != "" {
					t.Errorf("expected input %q to be rejected, got text %q", tt.input, got)
				}
			}
		})
	}
}

func TestNumericalEntry_Keyboard(t *testing.T) {
	entry := ui.NewNumericalEntry()

	// Verify it requests the Number keyboard on mobile devices
	if got := entry.Keyboard(); got != mobile.NumberKeyboard {
		t.Errorf("expected keyboard type %v, got %v", mobile.NumberKeyboard, got)
	}
}

// TestNumericalEntry_DirectSetText documents that SetText bypasses the rune
// filter; IntValue and the port Validator cover that case.
func TestNumericalEntry_DirectSetText(t *testing.T) {
	entry := ui.NewNumericalEntry()

	// Direct setting bypasses TypedRune
	entry.SetText("abc")
	if entry.Text != "abc" {
		t.Error("SetText should allow arbitrary text (validation happens separately)")
	}
}

func TestNumericalEntry_IntValue(t *testing.T) {
	entry := ui.NewNumericalEntry()

	tests := []struct {
		text   string
		want   int
		wantOK bool
	}{
		{"42", 42, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"7x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			entry.SetText(tt.text)
			got, ok := entry.IntValue()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("IntValue() on %q = (%d, %v), want (%d, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNumericalEntry_SetIntValue(t *testing.T) {
	entry := ui.NewNumericalEntry()

	entry.SetIntValue(18081)
	if entry.Text != "18081" {
		t.Errorf("expected text %q, got %q", "18081", entry.Text)
	}
}
