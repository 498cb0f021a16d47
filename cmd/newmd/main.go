package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/newmd/newmd/internal/config"
	"github.com/newmd/newmd/internal/loader"
	"github.com/newmd/newmd/internal/platform"
	"github.com/newmd/newmd/internal/reminder"
	"github.com/newmd/newmd/internal/server"
	"github.com/newmd/newmd/internal/shell"
	"github.com/newmd/newmd/internal/updatecheck"
	"github.com/newmd/newmd/internal/version"
)

const exitUpdateAvailable = 10

type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	initLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runShell(ctx, os.Args[2:])
	case "check":
		err = runCheck(ctx, os.Args[2:], os.Stdout)
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "remind":
		err = runRemind(ctx, os.Args[2:])
	case "version":
		fmt.Printf("newmd %s (%s/%s)\n", version.Current(), runtime.GOOS, runtime.GOARCH)
		return
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	var exitErr exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "newmd: %v\n", err)
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(os.Getenv("NEWMD_LOG_LEVEL"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func loadConfig(fs *flag.FlagSet, args []string) (config.File, error) {
	var path string
	fs.StringVar(&path, "config", os.Getenv("NEWMD_CONFIG"), "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return config.File{}, err
	}
	return config.Load(path)
}

func runShell(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var openStore bool
	fs.BoolVar(&openStore, "open-store", false, "open the store listing when an update is available")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	checker, err := cfg.Checker()
	if err != nil {
		return err
	}
	policy, err := loader.NewPolicy(cfg.Content.Allow)
	if err != nil {
		return err
	}

	l := loader.New(platform.BrowserSurface{Ctx: ctx})
	l.Policy = policy
	l.External = platform.BrowserSurface{Ctx: ctx}

	app := &shell.App{
		Target:         cfg.Content.Target,
		CurrentVersion: version.Current(),
		StoreURL:       storeURLForPlatform(cfg.Update.AppID),
		Checker:        checker,
		Loader:         l,
		Presenter:      &terminalPresenter{w: os.Stderr, open: openStore, links: l},
	}
	results, err := app.Start(ctx)
	if err != nil {
		return err
	}
	shell.WaitPrompt(ctx, results)
	return nil
}

func runCheck(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var current string
	fs.StringVar(&current, "current", version.Current(), "version to compare against the store listing")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	checker, err := cfg.Checker()
	if err != nil {
		return err
	}
	if !checker.CheckForUpdate(ctx, current) {
		fmt.Fprintf(out, "newmd %s is up to date\n", current)
		return nil
	}
	fmt.Fprintf(out, "update available for newmd %s: %s\n", current, cfg.StoreURL())
	return exitCodeError{code: exitUpdateAvailable}
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	return server.Run(ctx, server.Options{Config: cfg})
}

func runRemind(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remind", flag.ContinueOnError)
	var useLog bool
	fs.BoolVar(&useLog, "log", false, "write reminders to the log instead of the desktop")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if !cfg.Reminder.Enabled {
		return fmt.Errorf("reminder is disabled in config")
	}
	var n reminder.Notifier = platform.NewDesktopNotifier()
	if useLog {
		n = reminder.LogNotifier{}
	}
	return reminder.Run(ctx, cfg.ReminderSchedule(), n)
}

// storeURLForPlatform uses the App Store deep link where a handler for it
// exists and the web listing elsewhere.
func storeURLForPlatform(appID string) string {
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return updatecheck.StoreURL(appID)
	}
	return updatecheck.WebStoreURL(appID)
}

type terminalPresenter struct {
	w     io.Writer
	open  bool
	links *loader.Loader
}

// PromptUpdate prints the update notice and, when asked to, follows the
// store link through the loader so the link policy decides where it opens.
func (p *terminalPresenter) PromptUpdate(storeURL string) {
	fmt.Fprintf(p.w, "有新的更新\n請前往App Store進行更新。\n%s\n", storeURL)
	if !p.open || p.links == nil {
		return
	}
	decision, err := p.links.Follow(storeURL)
	if err != nil {
		slog.Warn("open store listing failed", "url", storeURL, "error", err)
		return
	}
	slog.Debug("store listing opened", "url", storeURL, "route", decision.String())
}

func usage() {
	fmt.Fprintf(os.Stderr, `newmd - NewMD desktop shell

Usage:
  newmd <command> [-config path]

Commands:
  run      Open the content target and check for an update
  check    Check the store for a newer version (exit 10 when one exists)
  serve    Run the local status API
  remind   Run the daily reminder
  version  Print the version
  help     Show this help
`)
}
