package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fontsweep/internal/config"
	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontload"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/protocol"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path" default:"fontsweep.yaml"`
	Document string           `short:"d" help:"Document fixture path (overrides config)"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Scan    ScanCmd    `cmd:"" help:"Scan the document and report font usage"`
	Replace ReplaceCmd `cmd:"" help:"Replace fonts according to old=new mappings"`
	Select  SelectCmd  `cmd:"" help:"Select all elements using a font"`
	Style   StyleCmd   `cmd:"" help:"Manage and apply text styles"`
	Serve   ServeCmd   `cmd:"" help:"Run as a long-lived service (NATS, metrics, watch)"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file, falling back to defaults
// when it does not exist, and applies CLI overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(c.Config); err == nil {
		cfg, err = config.Load(c.Config)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if c.Document != "" {
		cfg.Document.Path = c.Document
	}
	if cfg.Document.Path == "" {
		return nil, fmt.Errorf("no document given: set --document or document.path in %s", c.Config)
	}
	return cfg, nil
}

// newService loads the document and wires a protocol service over it.
func newService(cfg *config.Config) (*protocol.Service, error) {
	doc, err := doctree.LoadDocument(cfg.Document.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	loader := &fontload.RetryingLoader{
		Inner:    doc,
		Attempts: uint(cfg.Replace.LoadAttempts),
		Delay:    cfg.Replace.LoadRetryWait,
	}
	svc := protocol.NewService(nil, doc, loader,
		protocol.WithBatchSize(cfg.Replace.BatchSize),
	)
	return svc, nil
}

// parseFontSpec parses "Family|Style"; a bare family gets the Regular
// style.
func parseFontSpec(spec string) (fontref.FontRef, error) {
	if !strings.Contains(spec, fontref.KeySeparator) {
		if strings.TrimSpace(spec) == "" {
			return fontref.FontRef{}, fmt.Errorf("empty font spec")
		}
		return fontref.New(spec, "Regular"), nil
	}
	return fontref.ParseKey(spec)
}
