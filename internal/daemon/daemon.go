// Package daemon runs fontsweep as a long-lived service: the document
// is kept loaded, the protocol is exposed over NATS, metrics are
// served over HTTP, and the inventory is refreshed on file changes
// and on a periodic schedule.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/nats-io/nats.go"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/fontsweep/internal/config"
	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/metrics"
	"git.home.luguber.info/inful/fontsweep/internal/natsbridge"
	"git.home.luguber.info/inful/fontsweep/internal/protocol"
)

// Daemon composes the serve-mode runtime.
type Daemon struct {
	cfg     *config.Config
	host    *swappableHost
	service *protocol.Service

	conn       *nats.Conn
	bridge     *natsbridge.Bridge
	scheduler  gocron.Scheduler
	watcher    *DocumentWatcher
	httpServer *http.Server
}

// New loads the configured document and wires the service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg.Document.Path == "" {
		return nil, fmt.Errorf("no document configured")
	}
	doc, err := doctree.LoadDocument(cfg.Document.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prom.Registry
	if cfg.Serve.Metrics.Enabled {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	host := newSwappableHost(doc)
	service := protocol.NewService(nil, host, host,
		protocol.WithRecorder(recorder),
		protocol.WithBatchSize(cfg.Replace.BatchSize),
	)
	service.Register()

	d := &Daemon{cfg: cfg, host: host, service: service}
	if cfg.Serve.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		d.httpServer = &http.Server{Addr: cfg.Serve.Metrics.Addr, Handler: mux}
	}
	return d, nil
}

// Service returns the wired protocol service.
func (d *Daemon) Service() *protocol.Service { return d.service }

// Run starts all configured components and blocks until the context
// is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.start(ctx); err != nil {
		d.shutdown()
		return err
	}

	// Initial scan so subscribers see state immediately.
	if _, err := d.service.Scan(ctx, string(doctree.ScopeDocument)); err != nil {
		slog.Warn("initial scan failed", "error", err)
	}

	<-ctx.Done()
	slog.Info("shutting down")
	d.shutdown()
	return nil
}

func (d *Daemon) start(ctx context.Context) error {
	if d.cfg.Serve.NATS.Enabled {
		conn, err := natsbridge.Connect(d.cfg.Serve.NATS.URL)
		if err != nil {
			return err
		}
		d.conn = conn
		d.bridge = natsbridge.NewBridge(conn, d.service, d.cfg.Serve.NATS.SubjectPrefix)
		if err := d.bridge.Start(); err != nil {
			return err
		}
	}

	if d.httpServer != nil {
		go func() {
			slog.Info("serving metrics", "addr", d.httpServer.Addr)
			if err := d.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	if d.cfg.Serve.Watch {
		watcher, err := NewDocumentWatcher(d.cfg.Document.Path, func() { d.reload(ctx) })
		if err != nil {
			return err
		}
		d.watcher = watcher
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}

	if d.cfg.Serve.RescanInterval > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(d.cfg.Serve.RescanInterval),
			gocron.NewTask(func() {
				if _, err := d.service.Scan(ctx, string(doctree.ScopeDocument)); err != nil {
					slog.Warn("scheduled scan failed", "error", err)
				}
			}),
			gocron.WithName("periodic-rescan"),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule periodic rescan: %w", err)
		}
		d.scheduler = scheduler
		scheduler.Start()
		slog.Info("periodic rescan scheduled", "interval", d.cfg.Serve.RescanInterval)
	}

	return nil
}

// reload swaps in a freshly parsed document and re-scans. A document
// that fails to parse leaves the previous one active.
func (d *Daemon) reload(ctx context.Context) {
	doc, err := doctree.LoadDocument(d.cfg.Document.Path)
	if err != nil {
		slog.Error("document reload failed, keeping previous document", "error", err)
		return
	}
	d.host.Swap(doc)
	slog.Info("document reloaded", "path", d.cfg.Document.Path)
	if _, err := d.service.Scan(ctx, string(doctree.ScopeDocument)); err != nil {
		slog.Warn("post-reload scan failed", "error", err)
	}
}

func (d *Daemon) shutdown() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.scheduler != nil {
		if err := d.scheduler.Shutdown(); err != nil {
			slog.Error("scheduler shutdown failed", "error", err)
		}
	}
	if d.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
	if d.bridge != nil {
		d.bridge.Close()
	}
	if d.conn != nil {
		d.conn.Close()
	}
}
