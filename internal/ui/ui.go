package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
	"github.com/tartampluch/go-refill/internal/locale"
	"github.com/tartampluch/go-refill/internal/message"
	"github.com/tartampluch/go-refill/internal/server"
	"github.com/zalando/go-keyring"
)

// GoRefillApp encapsulates the UI state, preferences, and background logic.
type GoRefillApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	Catalog     *locale.Catalog
	Translator  *locale.Translator
	Ctx         context.Context

	Server  *server.FeedServer
	Fetcher engine.SheetFetcher
	Clock   engine.Clock // Injected clock for testability (e.g. mocking time travel)

	// Location is the timezone "today" is taken in.
	Location *time.Location

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayOpenItem     *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	// openURL hands mailto links to the OS. Replaced in tests.
	openURL func(*url.URL) error

	// Reminders State
	ReportMut       sync.RWMutex
	Report          *engine.Report
	remindersWindow fyne.Window
	remindersView   *remindersView
}

// NewGoRefillApp constructs the application and wires dependencies.
func NewGoRefillApp(a fyne.App, ctx context.Context, srv *server.FeedServer, fetcher engine.SheetFetcher) *GoRefillApp {
	a.SetIcon(theme.MailComposeIcon())

	loc, err := time.LoadLocation(config.DefaultTimezone)
	if err != nil {
		slog.Warn(config.ErrTimezone,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyTimezone, config.DefaultTimezone,
			config.LogKeyError, err)
		loc = time.UTC
	}

	return &GoRefillApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{}, // Default to real clock in production
		Location:           loc,
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
		openURL:            a.OpenURL,
	}
}

// Run launches the application services and the main UI loop.
func (app *GoRefillApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyPort, app.Server.Port,
			config.LogKeyComponent, config.CompUI)

		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()
	app.App.Run()
}

// watchPreferences monitors changes to settings to trigger immediate updates.
func (app *GoRefillApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// setupTrayMenu constructs the system tray menu.
func (app *GoRefillApp) setupTrayMenu() {
	// The status item opens the reminders window.
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowRemindersWindow()
	})

	app.TrayOpenItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuOpenFile), func() {
		app.ShowOpenFileDialog()
	})

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.performSync(true)
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayOpenItem,
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *GoRefillApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayOpenItem.Label = app.GetMsg(config.TKeyMenuOpenFile)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// refreshInterval returns the configured refresh period, or 0 when auto-refresh is disabled.
func (app *GoRefillApp) refreshInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
	if val <= config.DisabledInterval {
		return 0
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker re-evaluates the patient list periodically so that
// "today" rolls over and edits to the list are picked up.
func (app *GoRefillApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performSync(false)

	currentDuration := app.refreshInterval()
	ticker := time.NewTicker(time.Duration(config.DefaultRefreshMin) * time.Minute)
	defer ticker.Stop()
	if currentDuration > 0 {
		ticker.Reset(currentDuration)
	} else {
		ticker.Stop()
	}

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			newDuration := app.refreshInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				if currentDuration > 0 {
					ticker.Reset(currentDuration)
				} else {
					ticker.Stop()
				}
			}

		case <-ticker.C:
			app.performSync(false)
		}
	}
}

// performSync executes the pipeline (Acquire -> Decode -> Evaluate -> Export).
func (app *GoRefillApp) performSync(manual bool) {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifStart)))
	}

	cfg := app.loadSyncConfig()
	composer := app.Composer()

	gen := &engine.Generator{
		Clock:         app.Clock,
		Fetcher:       app.Fetcher,
		Location:      app.Location,
		FormatSummary: composer.Summary,
	}

	report, err := gen.RunSync(app.Ctx, cfg)
	if err != nil {
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifError)))
		}
		app.updateTrayStatus(-1)
		return
	}

	app.applyReport(report)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}
}

// applyReport replaces the previous evaluation wholesale.
func (app *GoRefillApp) applyReport(report *engine.Report) {
	app.ReportMut.Lock()
	app.Report = report
	app.ReportMut.Unlock()

	if app.Server != nil {
		app.Server.Update(report.Calendar, report.Contacts)
	}
	app.updateTrayStatus(len(report.Events))

	// An open reminders window follows the new evaluation.
	fyne.Do(func() {
		if app.remindersView != nil {
			app.showReport(app.remindersView, report)
		}
	})
}

// currentReport returns the latest evaluation, or nil before the first sync.
func (app *GoRefillApp) currentReport() *engine.Report {
	app.ReportMut.RLock()
	defer app.ReportMut.RUnlock()
	return app.Report
}

// updateTrayStatus updates the top menu item with the number of reminders due today.
func (app *GoRefillApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}
	app.TrayStatusItem.Label = app.trayLabel(count)
	app.Menu.Refresh()
}

// trayLabel renders the status text. A negative count signals a failed sync.
func (app *GoRefillApp) trayLabel(count int) string {
	switch {
	case count < 0:
		return config.FallbackTrayError
	case count == 0:
		label := app.GetMsg(config.TKeyTrayStatusZero)
		if label == config.TKeyTrayStatusZero {
			return fmt.Sprintf(config.FallbackTrayDefault, 0)
		}
		return label
	default:
		label, err := app.Translator.Plural(config.TKeyTrayStatus, count, nil)
		if err != nil || label == "" {
			return fmt.Sprintf(config.FallbackTrayDefault, count)
		}
		return label
	}
}

// loadSyncConfig assembles the engine configuration from UI preferences and Keyring.
func (app *GoRefillApp) loadSyncConfig() engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:      app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefSourceURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	if app.Preferences.Bool(config.PrefAlarmEnabled) {
		days := app.Preferences.IntWithFallback(config.PrefAlarmDaysLead, config.DefaultAlarmDaysLead)
		cfg.AlarmTrigger = config.AlarmTriggerForDays(days)
	}

	return cfg
}

// Composer returns a message composer in the current UI language.
func (app *GoRefillApp) Composer() *message.Composer {
	return message.New(app.Translator)
}
