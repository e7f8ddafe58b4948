package daemon

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// swappableHost is a Host/Loader facade over the currently loaded
// document. Reloads swap the backing document atomically so the
// long-lived service keeps a stable reference.
type swappableHost struct {
	mu  sync.RWMutex
	doc *doctree.MemDoc
}

func newSwappableHost(doc *doctree.MemDoc) *swappableHost {
	return &swappableHost{doc: doc}
}

func (h *swappableHost) Swap(doc *doctree.MemDoc) {
	h.mu.Lock()
	h.doc = doc
	h.mu.Unlock()
}

func (h *swappableHost) current() *doctree.MemDoc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc
}

func (h *swappableHost) Pages() []doctree.Node { return h.current().Pages() }

func (h *swappableHost) CurrentPage() (doctree.Node, bool) { return h.current().CurrentPage() }

func (h *swappableHost) Selection() []doctree.Node { return h.current().Selection() }

func (h *swappableHost) SetSelection(nodes []doctree.Node) error {
	return h.current().SetSelection(nodes)
}

func (h *swappableHost) TextStyles() []doctree.TextStyle { return h.current().TextStyles() }

func (h *swappableHost) CreateTextStyle(name string, font fontref.FontRef, size float64) (doctree.TextStyle, error) {
	return h.current().CreateTextStyle(name, font, size)
}

func (h *swappableHost) ApplyTextStyle(el doctree.TextElement, styleID string) error {
	return h.current().ApplyTextStyle(el, styleID)
}

func (h *swappableHost) LoadFont(ctx context.Context, font fontref.FontRef) error {
	return h.current().LoadFont(ctx, font)
}
