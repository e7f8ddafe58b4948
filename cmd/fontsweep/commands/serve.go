package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/fontsweep/internal/config"
	"git.home.luguber.info/inful/fontsweep/internal/daemon"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct{}

// Run starts the daemon and blocks until interrupted.
func (ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	configureLogging(cfg, root.Verbose)

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

// configureLogging replaces the flag-based logger with the configured
// level and format for long-running mode.
func configureLogging(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	switch config.LogLevel(cfg.Logging.Level) {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.LogFormat(cfg.Logging.Format) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
