package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/marazt/strava-upload/pkg/bootstrap"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/infrastructure/sentry"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

const usage = `usage: strava-upload [run|fix-types|serve] [flags]

  run        synchronize one source to Strava (default)
  fix-types  retype Workout activities named after a Movescount activity
  serve      expose run and fix-types over HTTP
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	source := fs.String("source", "", "source to synchronize: movescount or garmin (overrides SYNC_SOURCE)")
	lookbackDays := fs.Int("lookback-days", -1, "only sync activities from the last N days (overrides SYNC_LOOKBACK_DAYS)")
	pollInterval := fs.Duration("poll-interval", -1, "delay between upload status passes (overrides STRAVA_POLL_INTERVAL)")
	localDir := fs.String("local-dir", "", "staging directory (overrides LOCAL_BACKUP_DIR)")
	fromDir := fs.String("from-dir", "", "run: sync an export already on local disk instead of the backup bucket")
	addr := fs.String("addr", ":8080", "listen address for serve")
	dev := fs.Bool("dev", false, "human readable logs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if *source != "" {
		src, ok := activity.ParseSource(*source)
		if !ok {
			return fmt.Errorf("unknown source %q", *source)
		}
		cfg.Source = src
	}
	if *lookbackDays >= 0 {
		cfg.Lookback = time.Duration(*lookbackDays) * 24 * time.Hour
	}
	if *pollInterval >= 0 {
		cfg.PollInterval = *pollInterval
	}
	if *localDir != "" {
		cfg.LocalBackupDir = *localDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.NewLogger("strava-upload", *dev)
	svc, err := bootstrap.NewService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sentry.Flush(2 * time.Second)

	runner := svc.Runner()

	switch command {
	case "run":
		runID := uuid.NewString()
		var report *stravasync.Report
		if *fromDir != "" {
			report, err = runner.RunDir(ctx, cfg.Source, runID, *fromDir)
		} else {
			report, err = runner.Run(ctx, cfg.Source, runID)
		}
		if err != nil {
			return err
		}
		return printJSON(report.Counts())

	case "fix-types":
		report, err := runner.FixTypes(ctx)
		if err != nil {
			return err
		}
		return printJSON(report)

	case "serve":
		srv := &http.Server{
			Addr:         *addr,
			Handler:      newRouter(newServer(runner, logger)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("Listening", "addr", *addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
