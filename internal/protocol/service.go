package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/errors"
	"git.home.luguber.info/inful/fontsweep/internal/fontload"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/fontscan"
	"git.home.luguber.info/inful/fontsweep/internal/metrics"
	"git.home.luguber.info/inful/fontsweep/internal/replace"
	"git.home.luguber.info/inful/fontsweep/internal/styles"
)

// Service implements the protocol operations over one host document.
// Request methods return their result and publish the corresponding
// result/error messages on the bus, so both direct callers (CLI,
// transports) and bus subscribers observe the same traffic. Nothing
// panics or throws across this boundary; every failure becomes an
// error message.
type Service struct {
	bus       *Bus
	host      doctree.Host
	loader    fontload.Loader
	inventory *fontscan.Inventory
	engine    *replace.Engine
	bridge    *styles.Bridge
	recorder  metrics.Recorder
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	recorder  metrics.Recorder
	batchSize int
	yield     replace.YieldFunc
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) ServiceOption {
	return func(c *serviceConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithBatchSize overrides the replacement chunk size.
func WithBatchSize(n int) ServiceOption {
	return func(c *serviceConfig) { c.batchSize = n }
}

// WithYield injects the cooperative-yield seam of the engine.
func WithYield(y replace.YieldFunc) ServiceOption {
	return func(c *serviceConfig) { c.yield = y }
}

// NewService wires inventory, engine and style bridge over a host.
func NewService(bus *Bus, host doctree.Host, loader fontload.Loader, opts ...ServiceOption) *Service {
	cfg := serviceConfig{
		recorder:  metrics.NoopRecorder{},
		batchSize: replace.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if bus == nil {
		bus = NewBus()
	}

	s := &Service{
		bus:       bus,
		host:      host,
		loader:    loader,
		inventory: fontscan.NewInventory(host),
		bridge:    styles.NewBridge(host, loader),
		recorder:  cfg.recorder,
	}
	engineOpts := []replace.Option{
		replace.WithRecorder(cfg.recorder),
		replace.WithBatchSize(cfg.batchSize),
		replace.WithProgress(s.publishProgress),
	}
	if cfg.yield != nil {
		engineOpts = append(engineOpts, replace.WithYield(cfg.yield))
	}
	s.engine = replace.NewEngine(host, loader, engineOpts...)
	return s
}

// Bus returns the service's message bus.
func (s *Service) Bus() *Bus { return s.bus }

func (s *Service) publishProgress(p replace.Progress) {
	if err := s.bus.Publish(ProgressNote{
		OperationID: p.OperationID,
		Progress:    p.Percent,
		Total:       p.Total,
		Processed:   p.Processed,
	}); err != nil {
		slog.Warn("progress subscriber failed", "error", err)
	}
}

func (s *Service) publish(m Message) {
	if err := s.bus.Publish(m); err != nil {
		slog.Warn("subscriber failed", "type", m.Type(), "error", err)
	}
}

// Scan runs an inventory scan and publishes scan-result/scan-error.
func (s *Service) Scan(ctx context.Context, scope string) (ScanResult, error) {
	parsed, err := doctree.ParseScope(scope)
	if err != nil {
		s.publish(ScanError{Error: err.Error()})
		return ScanResult{}, errors.ValidationError(err.Error())
	}

	start := time.Now()
	usages, err := s.inventory.Scan(parsed)
	s.recorder.ObserveScanDuration(string(parsed), time.Since(start))
	if err != nil {
		s.recorder.IncScanOutcome(metrics.OutcomeFailed)
		s.publish(ScanError{Error: err.Error()})
		return ScanResult{}, errors.DocumentError(err, "scan failed")
	}
	s.recorder.IncScanOutcome(metrics.OutcomeSuccess)

	docFonts := s.inventory.CollectDocumentFonts()
	result := ScanResult{
		Fonts:           usages,
		AvailableFonts:  docFonts.AvailableFamilies,
		AvailableStyles: docFonts.StylesByFamily,
		CommonStyles:    fontscan.CommonFamilies(),
		TextStyles:      s.host.TextStyles(),
	}
	s.publish(result)
	return result, nil
}

// Replace runs a replacement and publishes replace-result, then the
// post-mutation scan-result: a fresh scan is the only verification
// mechanism after a replace, successful or not.
func (s *Service) Replace(ctx context.Context, scope string, mappings []MappingPayload) (ReplaceResult, error) {
	parsed, err := doctree.ParseScope(scope)
	if err != nil {
		s.publish(ReplaceError{Error: err.Error()})
		return ReplaceResult{}, errors.ValidationError(err.Error())
	}
	engineMappings, err := validateMappings(mappings)
	if err != nil {
		s.publish(ReplaceError{Error: err.Error()})
		return ReplaceResult{}, err
	}

	res := s.engine.Replace(ctx, parsed, engineMappings)
	result := ReplaceResult{Success: res.Success, Replaced: res.ReplacedCount, Errors: res.Errors}
	s.publish(result)

	if _, err := s.Scan(ctx, string(parsed)); err != nil {
		slog.Warn("post-replace scan failed", "error", err)
	}
	return result, nil
}

func validateMappings(payloads []MappingPayload) ([]replace.Mapping, error) {
	if len(payloads) == 0 {
		return nil, errors.ValidationError("no mappings provided")
	}
	seen := make(map[string]struct{}, len(payloads))
	mappings := make([]replace.Mapping, 0, len(payloads))
	for i, p := range payloads {
		if p.OldFont.IsZero() || p.NewFont.IsZero() {
			return nil, errors.ValidationError(fmt.Sprintf("mapping %d: empty font family", i))
		}
		if p.OldFont == p.NewFont {
			continue
		}
		// At most one target per source font.
		if _, dup := seen[p.OldFont.Key()]; dup {
			return nil, errors.ValidationError(fmt.Sprintf("duplicate mapping for source font %s", p.OldFont))
		}
		seen[p.OldFont.Key()] = struct{}{}
		mappings = append(mappings, replace.Mapping{Old: p.OldFont, New: p.NewFont})
	}
	return mappings, nil
}

// SelectFont selects every element in scope using the font and
// publishes select-result.
func (s *Service) SelectFont(ctx context.Context, family, style, scope string) (SelectResult, error) {
	parsed, err := doctree.ParseScope(scope)
	if err != nil {
		return SelectResult{}, errors.ValidationError(err.Error())
	}
	elements, err := s.inventory.FindElements(parsed, fontref.New(family, style))
	if err != nil {
		return SelectResult{}, errors.DocumentError(err, "font selection failed")
	}
	nodes := make([]doctree.Node, len(elements))
	for i, el := range elements {
		nodes[i] = el
	}
	if err := s.host.SetSelection(nodes); err != nil {
		return SelectResult{}, errors.DocumentError(err, "host rejected selection")
	}
	result := SelectResult{Count: len(nodes)}
	s.publish(result)
	return result, nil
}

// CreateStyle creates a named text style and publishes style-result
// or style-error.
func (s *Service) CreateStyle(ctx context.Context, req CreateTextStyle) (StyleResult, error) {
	style, err := s.bridge.CreateStyle(ctx, fontref.New(req.Family, req.Style), req.Name, req.Size)
	if err != nil {
		s.publish(StyleError{Error: err.Error()})
		return StyleResult{}, err
	}
	result := StyleResult{StyleID: style.ID, StyleName: style.Name}
	s.publish(result)
	return result, nil
}

// ApplyStyle bulk-applies a style and publishes style-result followed
// by the post-mutation scan-result.
func (s *Service) ApplyStyle(ctx context.Context, req ApplyTextStyle) (StyleResult, error) {
	parsed, err := doctree.ParseScope(req.Scope)
	if err != nil {
		s.publish(StyleError{Error: err.Error()})
		return StyleResult{}, errors.ValidationError(err.Error())
	}
	applied, err := s.bridge.ApplyStyle(ctx, parsed, req.StyleID, fontref.New(req.Family, req.Style))
	if err != nil {
		s.publish(StyleError{Error: err.Error()})
		return StyleResult{}, err
	}
	result := StyleResult{StyleID: req.StyleID, AppliedCount: applied.AppliedCount, Errors: applied.Errors}
	s.publish(result)

	if _, err := s.Scan(ctx, req.Scope); err != nil {
		slog.Warn("post-apply scan failed", "error", err)
	}
	return result, nil
}

// Register subscribes the service to the request message types so an
// embedded presentation layer can drive it entirely through the bus.
// Handler errors are already converted to error messages, so the bus
// never sees a failure.
func (s *Service) Register() {
	s.bus.Subscribe(TypeScanFonts, func(m Message) error {
		if req, ok := m.(ScanFonts); ok {
			_, _ = s.Scan(context.Background(), req.Scope)
		}
		return nil
	})
	s.bus.Subscribe(TypeReplaceFonts, func(m Message) error {
		if req, ok := m.(ReplaceFonts); ok {
			_, _ = s.Replace(context.Background(), req.Scope, req.Mappings)
		}
		return nil
	})
	s.bus.Subscribe(TypeSelectFont, func(m Message) error {
		if req, ok := m.(SelectFont); ok {
			_, _ = s.SelectFont(context.Background(), req.Family, req.Style, req.Scope)
		}
		return nil
	})
	s.bus.Subscribe(TypeCreateTextStyle, func(m Message) error {
		if req, ok := m.(CreateTextStyle); ok {
			_, _ = s.CreateStyle(context.Background(), req)
		}
		return nil
	})
	s.bus.Subscribe(TypeApplyTextStyle, func(m Message) error {
		if req, ok := m.(ApplyTextStyle); ok {
			_, _ = s.ApplyStyle(context.Background(), req)
		}
		return nil
	})
}
