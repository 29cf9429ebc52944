package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
	"github.com/tartampluch/go-refill/internal/server"
	"github.com/tartampluch/go-refill/internal/ui"
)

func main() {
	os.Exit(runMain())
}

// runMain returns the exit code so that deferred closes run before os.Exit.
//
// With a patient list source (-file, -url or source_url in the settings) the
// list is evaluated once and the report printed; otherwise the tray app starts.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	opts := cliOptions{}
	flag.StringVar(&opts.File, config.FlagFile, "", config.FlagDescFile)
	flag.StringVar(&opts.URL, config.FlagURL, "", config.FlagDescURL)
	flag.StringVar(&opts.Today, config.FlagToday, "", config.FlagDescToday)
	flag.StringVar(&opts.Format, config.FlagFormat, "", config.FlagDescFormat)
	flag.StringVar(&opts.Lang, config.FlagLang, "", config.FlagDescLang)
	flag.StringVar(&opts.Config, config.FlagConfig, "", config.FlagDescConfig)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// Settings decide the mode, so they are read before the logger exists.
	settings, err := opts.settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, config.MsgFatal, config.ErrLoadSettings, err)
		return config.ExitCodeError
	}
	headless := opts.headless(settings)

	// stdout carries the report in headless mode.
	console := io.Writer(os.Stdout)
	if headless {
		console = os.Stderr
	}
	if logCloser := setupLogging(*debugMode, console); logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if headless {
		err = runReport(ctx, opts, settings, os.Stdout)
	} else {
		err = runTray(ctx, settings)
	}
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// runTray starts the tray app and blocks until it quits.
// The feed port saved in the preferences wins over the settings port.
func runTray(ctx context.Context, settings config.Settings) error {
	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	port := a.Preferences().StringWithFallback(config.PrefServerPort, settings.Port)
	gui := ui.NewGoRefillApp(a, ctx, server.NewFeedServer(port), engine.NewHTTPFetcher())

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo records the build and host, useful when a pharmacy sends a log file.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to console and, when the
// cache dir is usable, to a log file truncated on every start.
// The returned Closer is nil when no file was opened.
func setupLogging(debugMode bool, console io.Writer) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := logFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	})))

	if logFile == nil {
		return nil
	}
	return logFile
}

// logFilePath returns <user cache dir>/<AppID>/app.log, creating the directory owner-only.
func logFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
