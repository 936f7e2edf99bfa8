package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snapsync/internal/config"
	"snapsync/internal/google"
	"snapsync/internal/hypermedia"
	"snapsync/internal/icloud"
	"snapsync/internal/syncer"
	"snapsync/internal/teamsnap"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run the attendance synchronization (the default command).",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be marked without making changes."},
			&cli.IntFlag{Name: "watch", Value: 3600, Usage: "Run sync every N seconds."},
			&cli.StringFlag{Name: "schedule", Usage: `Run sync on a cron schedule, e.g. "0 7 * * *". Overrides --watch.`},
			&cli.StringFlag{Name: "match", Usage: `How events are matched: "overlap" or "exact". Overrides the config file.`},
		},
		Action: syncAction,
	}
}

// runOptions are the per-invocation knobs of a sync run.
type runOptions struct {
	includeMaybe bool
	mode         syncer.MatchMode
	dryRun       bool
}

func syncAction(c *cli.Context) error {
	logger := loggerFor(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("match") {
		cfg.Sync.Match = c.String("match")
	}
	if err := cfg.ValidateSync(); err != nil {
		return err
	}
	mode, err := syncer.ParseMatchMode(cfg.Sync.Match)
	if err != nil {
		return err
	}

	opts := runOptions{
		includeMaybe: cfg.TeamSnap.SyncMaybe || c.Bool("sync_maybe"),
		mode:         mode,
		dryRun:       c.Bool("dry-run"),
	}
	if opts.dryRun {
		logger.Info("Performing a dry run. No changes will be made.")
	}

	dest, err := newDestination(c.Context, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	run := func(ctx context.Context) error {
		return runOnce(ctx, logger, cfg, dest, opts, time.Now())
	}

	switch {
	case c.IsSet("schedule"):
		return runScheduled(c.Context, logger, c.String("schedule"), run)
	case c.IsSet("watch"):
		return runWatch(c.Context, logger, time.Duration(c.Int("watch"))*time.Second, run)
	default:
		logger.Info("Running a single sync cycle.")
		if err := run(c.Context); err != nil {
			return fmt.Errorf("single sync cycle failed: %w", err)
		}
		return nil
	}
}

func newDestination(ctx context.Context, logger *slog.Logger, cfg *config.Config) (syncer.Destination, error) {
	switch cfg.Sync.Destination {
	case config.DestinationGoogle:
		return google.NewClient(ctx, logger, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenFile, cfg.Google.CalendarID, cfg.Sync.HorizonDays)
	case config.DestinationCalDAV:
		return icloud.NewClient(ctx, logger, cfg.CalDAV.Endpoint, cfg.CalDAV.Username, cfg.CalDAV.Password, cfg.CalDAV.CalendarName, cfg.CalDAV.AttendeeEmail, cfg.Sync.HorizonDays)
	default:
		return nil, fmt.Errorf("unknown destination %q", cfg.Sync.Destination)
	}
}

// runOnce performs one full sync. now is the single reference instant for
// every past/future comparison of the run.
func runOnce(ctx context.Context, logger *slog.Logger, cfg *config.Config, dest syncer.Destination, opts runOptions, now time.Time) error {
	logger = logger.With("run", uuid.NewString())

	hm := hypermedia.NewBearerClient(ctx, cfg.TeamSnap.AccessToken, cfg.TeamSnap.Timeout, logger)
	ts := teamsnap.NewClient(hm, cfg.TeamSnap.APIRoot, logger)

	memberID, err := ts.ResolveMemberID(ctx, cfg.TeamSnap.TeamID, cfg.TeamSnap.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve member: %w", err)
	}

	records, err := ts.ListAvailabilities(ctx, cfg.TeamSnap.TeamID, memberID)
	if err != nil {
		return fmt.Errorf("failed to list availabilities: %w", err)
	}
	refs := teamsnap.FilterAttending(records, opts.includeMaybe)
	logger.Info("Found attending events on TeamSnap.", "availabilities", len(records), "attending", len(refs), "includeMaybe", opts.includeMaybe)

	windows := ts.FutureWindows(ctx, refs, now)
	_, err = syncer.NewSyncer(logger, dest, opts.mode, opts.dryRun).Run(ctx, windows, now)
	return err
}

// runWatch repeats run every interval until interrupted.
func runWatch(ctx context.Context, logger *slog.Logger, interval time.Duration, run func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting watcher.", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := run(ctx); err != nil {
			logger.Error("Sync cycle failed", "error", describeError(err))
		}
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped.")
			return nil
		case <-ticker.C:
		}
	}
}

// runScheduled runs on a cron schedule until interrupted. A run still in
// progress when the next one is due causes that one to be skipped.
func runScheduled(ctx context.Context, logger *slog.Logger, schedule string, run func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	sched := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger)))
	if _, err := sched.AddFunc(schedule, func() {
		if err := run(ctx); err != nil {
			logger.Error("Sync cycle failed", "error", describeError(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	logger.Info("Starting scheduler.", "schedule", schedule)
	sched.Start()
	<-ctx.Done()
	<-sched.Stop().Done()
	logger.Info("Scheduler stopped.")
	return nil
}
