package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/paywindow-tracker/internal/config"
	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/logging"
	"github.com/Tiliavir/paywindow-tracker/internal/storage"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

// app bundles what every command needs once the database is open.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  *storage.SQLiteStore
	ledger *ledger.Ledger
}

// openApp loads the config and opens the ledger. Configuration problems exit
// with status 1, storage problems with status 2.
func openApp() *app {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dir := cfg.DataDir
	if dir == "" {
		dir, err = storage.BaseDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	store, err := storage.Open(storage.DBPath(dir))
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("failed to open database")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Debug().Str("db", storage.DBPath(dir)).Msg("database opened")

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		ledger: ledger.New(store, ledger.WithLogger(log)),
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing database")
	}
}

// exitError carries the process status for an error returned from a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCode returns the process status for err: the code of an exitError,
// otherwise 1.
func exitCode(err error) int {
	var eerr *exitError
	if errors.As(err, &eerr) {
		return eerr.code
	}
	return 1
}

// fail turns a ledger error into the command result. Validation problems
// exit 1; anything else is a storage failure and exits 2.
func fail(err error) error {
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &exitError{code: 2, err: err}
}

// parseDate accepts YYYY-MM-DD or one of today, yesterday and tomorrow, and
// returns the date as YYYY-MM-DD.
func parseDate(s string, now time.Time) (string, error) {
	today := timecalc.CivilDate(now)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return timecalc.FormatDate(today), nil
	case "yesterday":
		return timecalc.FormatDate(today.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return timecalc.FormatDate(today.AddDate(0, 0, 1)), nil
	}
	d, err := timecalc.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return "", &ledger.ValidationError{Field: "Date", Message: fmt.Sprintf("Please select a valid date (YYYY-MM-DD), got %q", s)}
	}
	return timecalc.FormatDate(d), nil
}

// resolveWindow parses a date argument and returns its pay window.
func resolveWindow(s string, now time.Time) (timecalc.PayWindow, error) {
	date, err := parseDate(s, now)
	if err != nil {
		return timecalc.PayWindow{}, err
	}
	w, _ := timecalc.ResolveISO(date)
	return w, nil
}
