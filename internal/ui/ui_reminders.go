package ui

import (
	"cmp"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
	"github.com/tartampluch/go-refill/internal/message"
)

// noSort keeps the evaluation order: source row, then round.
const noSort = -1

// remindersView is the content of the open reminders window.
type remindersView struct {
	display []engine.ReminderEvent
	sortCol int
	sortAsc bool

	header *widget.Label
	table  *widget.Table
	empty  *widget.Label
}

// ShowRemindersWindow displays the patients due for a refill today.
// If the window is already open, it requests focus.
// Tapping a contact cell opens the pre-filled message in the mail client.
func (app *GoRefillApp) ShowRemindersWindow() {
	if app.remindersWindow != nil {
		app.remindersWindow.RequestFocus()
		return
	}

	app.remindersWindow = app.App.NewWindow(app.GetMsg(config.TKeyWinReminders))
	app.remindersWindow.Resize(fyne.NewSize(config.RemindersWinWidth, config.RemindersWinHeight))

	v := &remindersView{sortCol: noSort, sortAsc: true}
	composer := app.Composer()

	v.table = widget.NewTable(
		func() (int, int) {
			return len(v.display), config.ColCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(v.display) {
				return
			}
			label.SetText(reminderCell(v.display[id.Row], id.Col, composer))
		},
	)

	v.table.ShowHeaderRow = true
	v.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("Header", func() {})
	}
	v.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		text := app.GetMsg(columnTitleKey(id.Col))
		if id.Col == v.sortCol {
			if v.sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if v.sortCol == id.Col {
				v.sortAsc = !v.sortAsc
			} else {
				v.sortCol = id.Col
				v.sortAsc = true
			}
			v.sort()
		}
	}

	v.table.OnSelected = func(id widget.TableCellID) {
		defer v.table.UnselectAll()
		if id.Col != config.ColIDContact || id.Row >= len(v.display) {
			return
		}
		app.openMessage(v.display[id.Row], composer)
	}

	v.table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	v.table.SetColumnWidth(config.ColIDRound, config.ColWidthRound)
	v.table.SetColumnWidth(config.ColIDWindow, config.ColWidthWindow)
	v.table.SetColumnWidth(config.ColIDContact, config.ColWidthContact)

	v.header = widget.NewLabel("")
	v.header.Wrapping = fyne.TextWrapWord
	v.empty = widget.NewLabel(app.GetMsg(config.TKeyLblNoReminders))

	app.showReport(v, app.currentReport())
	slog.Info(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(v.display))

	app.remindersView = v
	app.remindersWindow.SetContent(container.NewBorder(v.header, nil, nil, nil, v.table, v.empty))
	app.remindersWindow.SetOnClosed(func() {
		app.remindersWindow = nil
		app.remindersView = nil
	})

	app.remindersWindow.Show()
}

// showReport loads a report into the view, keeping the chosen sort column.
func (app *GoRefillApp) showReport(v *remindersView, report *engine.Report) {
	v.display = nil
	if report != nil {
		v.display = slices.Clone(report.Events)
	}
	v.header.SetText(app.statsText(report))

	if len(v.display) == 0 {
		v.table.Hide()
		v.empty.Show()
	} else {
		v.empty.Hide()
		v.table.Show()
	}
	v.sort()
}

// sort reorders the rows by the chosen column and redraws the table.
func (v *remindersView) sort() {
	sortReminders(v.display, v.sortCol, v.sortAsc)
	slog.Debug(config.LogMsgSorted,
		config.LogKeyComponent, config.CompUI,
		config.LogKeySortCol, v.sortCol,
		config.LogKeySortAsc, v.sortAsc)
	v.table.Refresh()
}

// ShowOpenFileDialog lets the user pick a patient list. The choice becomes
// the local source and is evaluated immediately.
func (app *GoRefillApp) ShowOpenFileDialog() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyMenuOpenFile))
	w.Resize(fyne.NewSize(config.RemindersWinWidth, config.RemindersWinHeight))

	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			slog.Error(config.ErrSourceRead, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
			return
		}
		if r == nil {
			return
		}
		_ = r.Close()
		app.useLocalFile(r.URI().Path())
	}, w)
	d.SetFilter(storage.NewExtensionFileFilter(config.SourceExtensions))
	d.SetOnClosed(func() { w.Close() })

	w.Show()
	d.Show()
}

// useLocalFile switches the source to path, re-evaluates and shows the result.
func (app *GoRefillApp) useLocalFile(path string) {
	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeLocal)
	app.Preferences.SetString(config.PrefLocalPath, path)

	app.performSync(true)

	if app.currentReport() == nil {
		return
	}
	if app.remindersWindow != nil {
		app.remindersWindow.Close()
	}
	app.ShowRemindersWindow()
}

// openMessage opens the mailto link of a reminder.
func (app *GoRefillApp) openMessage(ev engine.ReminderEvent, composer *message.Composer) {
	link, err := url.Parse(composer.MailtoLink(ev))
	if err == nil {
		err = app.openURL(link)
	}
	if err != nil {
		slog.Error(config.ErrOpenURL,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyName, ev.Record.Name,
			config.LogKeyError, err)
	}
}

// statsText renders the summary line above the table.
func (app *GoRefillApp) statsText(report *engine.Report) string {
	if report == nil {
		return app.GetMsg(config.TKeyLblNoReminders)
	}
	text, err := app.Translator.Format(config.TKeyLblStats, map[string]any{
		"Today":     app.Composer().FormatDate(report.Today),
		"Processed": report.Stats.Processed,
		"Found":     report.Stats.RemindersFound,
		"Skipped":   report.Stats.Skipped,
	})
	if err != nil {
		return strings.TrimSpace(fmt.Sprintf(config.ReportSummary,
			report.Today.Format(config.DateFormatISO),
			report.Stats.Processed, report.Stats.RemindersFound, report.Stats.Skipped))
	}
	return text
}

// columnTitleKey maps a table column to its translation key.
func columnTitleKey(col int) string {
	switch col {
	case config.ColIDRound:
		return config.TKeyColRound
	case config.ColIDWindow:
		return config.TKeyColWindow
	case config.ColIDContact:
		return config.TKeyColContact
	default:
		return config.TKeyColName
	}
}

// reminderCell returns the text of one table cell.
func reminderCell(ev engine.ReminderEvent, col int, composer *message.Composer) string {
	switch col {
	case config.ColIDName:
		return ev.Record.Name
	case config.ColIDRound:
		return strconv.Itoa(ev.Window.Round)
	case config.ColIDWindow:
		return composer.Window(ev.Window)
	case config.ColIDContact:
		return ev.Record.ContactAddress
	default:
		return ""
	}
}

// sortReminders orders events in place by column. Ties fall back to the
// evaluation order, whatever the previous sort was. noSort restores it.
func sortReminders(events []engine.ReminderEvent, col int, asc bool) {
	evaluated := func(a, b engine.ReminderEvent) int {
		if c := cmp.Compare(a.Record.Line, b.Record.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.Window.Round, b.Window.Round)
	}
	compare := func(a, b engine.ReminderEvent) int {
		switch col {
		case config.ColIDName:
			return strings.Compare(strings.ToLower(a.Record.Name), strings.ToLower(b.Record.Name))
		case config.ColIDRound:
			return cmp.Compare(a.Window.Round, b.Window.Round)
		case config.ColIDWindow:
			return a.Window.Start.Compare(b.Window.Start)
		case config.ColIDContact:
			return strings.Compare(strings.ToLower(a.Record.ContactAddress), strings.ToLower(b.Record.ContactAddress))
		default:
			return 0
		}
	}

	slices.SortFunc(events, func(a, b engine.ReminderEvent) int {
		c := compare(a, b)
		if !asc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return evaluated(a, b)
	})
}
