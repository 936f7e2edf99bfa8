package main

import (
	"log/slog"
	"os"
	"strings"

	"snapsync/internal/config"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Application failed", "error", describeError(err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "snapsync",
		Usage: "Mark yourself attending on calendar events you said yes to in TeamSnap.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath, Usage: "Path to config file"},
			&cli.BoolFlag{Name: "sync_maybe", Usage: `Sync "Maybe" events in addition to ones marked "Yes"`},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: syncAction,
		Commands: []*cli.Command{
			authCommand(),
			discoverCommand(),
			calendarsCommand(),
			syncCommand(),
		},
	}
}

// loggerFor builds the logger for a command: --verbose wins over LOG_LEVEL.
func loggerFor(c *cli.Context) *slog.Logger {
	if c.Bool("verbose") {
		return setupLogger("debug")
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	return setupLogger(logLevel)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// loadConfig reads the file named by --config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}
