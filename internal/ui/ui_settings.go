package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/zalando/go-keyring"
)

// portErrorKeys maps port validation failures to their translation.
var portErrorKeys = map[string]string{
	config.ErrPortRequired: config.TKeyErrPortReq,
	config.ErrPortNumber:   config.TKeyErrPortNum,
	config.ErrPortRange:    config.TKeyErrPortRange,
}

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect    *widget.Select
	modeSelect    *widget.Select
	urlEntry      *widget.Entry
	userEntry     *widget.Entry
	passEntry     *widget.Entry
	pathEntry     *widget.Entry
	entryInterval *NumericalEntry
	entryPort     *NumericalEntry
	checkAlarm    *widget.Check
	entryAlarm    *NumericalEntry
}

// ShowSettingsWindow displays the configuration dialog allowing users to manage settings.
func (app *GoRefillApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug(config.MsgSettingsFocus, config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.MsgSettingsOpen, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	sw := app.newSettingsWidgets()

	// refreshLayout triggers a window resize based on content visibility.
	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	sourceCard := app.buildSourceCard(w, sw, onLayoutChange)

	// --- General Section (Language, Interval & Port) ---
	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	widInterval := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)), sw.entryInterval)
	itemInterval := widget.NewFormItem(app.GetMsg(config.TKeyLblRefresh), widInterval)
	itemInterval.HintText = app.GetMsg(config.TKeyHelpInterval)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)

	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "",
		widget.NewForm(itemLang, itemInterval, itemPort))

	calendarCard := app.buildCalendarCard(sw, onLayoutChange)

	// --- Actions ---
	saveAction := func() {
		// Only the Port field blocks saving when invalid.
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw)
		w.Close()
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(app.GetMsg(config.TKeyLblFooter) + " v" + config.Version)
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		sourceCard,
		generalCard,
		calendarCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	refreshLayout = func() {
		paddedContent.Refresh()
		minSize := paddedContent.MinSize()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, minSize.Height))
	}

	w.SetContent(paddedContent)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.Window = nil })

	refreshLayout()
	w.Show()
}

// newSettingsWidgets creates the form fields pre-filled from preferences.
func (app *GoRefillApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModeLocal),
		app.GetMsg(config.TKeyModeWeb),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.String(config.PrefSourceURL))
	sw.urlEntry.PlaceHolder = config.PlaceholderURL

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefLocalPath))

	// Empty or 0 disables the auto-refresh on save.
	sw.entryInterval = NewNumericalEntry()
	sw.entryInterval.SetIntValue(app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.validatePort

	sw.checkAlarm = widget.NewCheck(app.GetMsg(config.TKeyLblEnableAlarm), nil)
	sw.checkAlarm.Checked = app.Preferences.Bool(config.PrefAlarmEnabled)

	sw.entryAlarm = NewNumericalEntry()
	sw.entryAlarm.SetIntValue(app.Preferences.IntWithFallback(config.PrefAlarmDaysLead, config.DefaultAlarmDaysLead))

	return sw
}

// validatePort wraps config.ValidatePort with translated messages.
func (app *GoRefillApp) validatePort(s string) error {
	err := config.ValidatePort(s)
	if err == nil {
		return nil
	}
	if key, ok := portErrorKeys[err.Error()]; ok {
		return errors.New(app.GetMsg(key))
	}
	return err
}

// buildSourceCard constructs the source selection UI.
func (app *GoRefillApp) buildSourceCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter(config.SourceExtensions))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpURL)

	itemUser := widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry)
	itemPass := widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry)

	webForm := widget.NewForm(itemURL, itemUser, itemPass)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	applyVis := func(mode string) {
		if mode == app.GetMsg(config.TKeyModeWeb) {
			webForm.Show()
			localForm.Hide()
		} else {
			webForm.Hide()
			localForm.Show()
		}
	}

	sw.modeSelect.OnChanged = func(mode string) {
		applyVis(mode)
		onLayoutChange()
	}

	if app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal) == config.SourceModeWeb {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeWeb))
	} else {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	}
	applyVis(sw.modeSelect.Selected)

	return widget.NewCard(app.GetMsg(config.TKeyLblSource), "", container.NewVBox(sw.modeSelect, webForm, localForm))
}

// buildCalendarCard constructs the alarm options of the calendar feed.
func (app *GoRefillApp) buildCalendarCard(sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	row := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblDaysBefore)), sw.entryAlarm)

	sw.checkAlarm.OnChanged = func(b bool) {
		if b {
			row.Show()
		} else {
			row.Hide()
		}
		onLayoutChange()
	}

	if !sw.checkAlarm.Checked {
		row.Hide()
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblCalendar), "", container.NewVBox(sw.checkAlarm, row))
}

// saveSettings persists the form and triggers a sync.
// Empty numeric fields disable the feature they control.
func (app *GoRefillApp) saveSettings(sw *settingsWidgets) {
	slog.Info(config.MsgSettingsSave, config.LogKeyComponent, config.CompUISet)

	mode := config.SourceModeLocal
	if sw.modeSelect.Selected == app.GetMsg(config.TKeyModeWeb) {
		mode = config.SourceModeWeb
	}

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefSourceMode, mode)
	app.Preferences.SetString(config.PrefSourceURL, sw.urlEntry.Text)
	app.Preferences.SetString(config.PrefUsername, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefLocalPath, sw.pathEntry.Text)

	if sw.userEntry.Text != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error(config.ErrKeyringSave, config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	if interval, ok := sw.entryInterval.IntValue(); ok && interval > config.DisabledInterval {
		app.Preferences.SetInt(config.PrefInterval, interval)
	} else {
		app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)
		slog.Info(config.MsgRefreshOff, config.LogKeyComponent, config.CompUISet)
	}

	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	}

	if days, ok := sw.entryAlarm.IntValue(); ok {
		app.Preferences.SetBool(config.PrefAlarmEnabled, sw.checkAlarm.Checked)
		app.Preferences.SetInt(config.PrefAlarmDaysLead, days)
	} else {
		app.Preferences.SetBool(config.PrefAlarmEnabled, false)
		slog.Info(config.MsgAlarmOff, config.LogKeyComponent, config.CompUISet)
	}

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	app.performSync(true)
}
