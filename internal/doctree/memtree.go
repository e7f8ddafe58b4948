package doctree

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// MemDoc is an in-memory Host implementation backing the CLI and the
// test suites. It also implements the font-loading capability: a font
// loads successfully when the catalog is empty (everything available)
// or when its key is present in the catalog.
type MemDoc struct {
	mu        sync.Mutex
	pages     []*MemNode
	selection []Node
	styles    []TextStyle
	catalog   map[string]struct{}
	nextID    int
}

// NewMemDoc creates an empty document with no pages, styles or catalog.
func NewMemDoc() *MemDoc {
	return &MemDoc{}
}

func (d *MemDoc) newID() string {
	d.nextID++
	return fmt.Sprintf("n%d", d.nextID)
}

// AddPage appends a page. The first page added becomes the active page
// unless a later page is marked current via SetCurrentPage.
func (d *MemDoc) AddPage(name string) *MemNode {
	page := &MemNode{doc: d, id: d.newID(), name: name, kind: "page", materialized: true}
	d.pages = append(d.pages, page)
	return page
}

// AddLazyPage appends a page whose subtree is not materialized.
func (d *MemDoc) AddLazyPage(name string) *MemNode {
	page := d.AddPage(name)
	page.materialized = false
	return page
}

// SetCurrentPage marks the active page.
func (d *MemDoc) SetCurrentPage(page *MemNode) {
	for _, p := range d.pages {
		p.current = p == page
	}
}

// Pages implements Host.
func (d *MemDoc) Pages() []Node {
	out := make([]Node, len(d.pages))
	for i, p := range d.pages {
		out[i] = p
	}
	return out
}

// CurrentPage implements Host. Defaults to the first page.
func (d *MemDoc) CurrentPage() (Node, bool) {
	for _, p := range d.pages {
		if p.current {
			return p, true
		}
	}
	if len(d.pages) > 0 {
		return d.pages[0], true
	}
	return nil, false
}

// Selection implements Host.
func (d *MemDoc) Selection() []Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Node, len(d.selection))
	copy(out, d.selection)
	return out
}

// SetSelection implements Host.
func (d *MemDoc) SetSelection(nodes []Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection = append([]Node(nil), nodes...)
	return nil
}

// TextStyles implements StyleStore.
func (d *MemDoc) TextStyles() []TextStyle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]TextStyle(nil), d.styles...)
}

// CreateTextStyle implements StyleStore.
func (d *MemDoc) CreateTextStyle(name string, font fontref.FontRef, size float64) (TextStyle, error) {
	if font.IsZero() {
		return TextStyle{}, fmt.Errorf("cannot create style %q: empty font family", name)
	}
	style := TextStyle{ID: uuid.NewString(), Name: name, Font: font, Size: size}
	d.mu.Lock()
	d.styles = append(d.styles, style)
	d.mu.Unlock()
	return style, nil
}

// AddTextStyle seeds a style with a fixed ID (fixture loading).
func (d *MemDoc) AddTextStyle(style TextStyle) TextStyle {
	if style.ID == "" {
		style.ID = uuid.NewString()
	}
	d.mu.Lock()
	d.styles = append(d.styles, style)
	d.mu.Unlock()
	return style
}

// ApplyTextStyle implements StyleStore: whole-element assignment of the
// style's font, recording the style link on the element.
func (d *MemDoc) ApplyTextStyle(el TextElement, styleID string) error {
	d.mu.Lock()
	var style *TextStyle
	for i := range d.styles {
		if d.styles[i].ID == styleID {
			style = &d.styles[i]
			break
		}
	}
	d.mu.Unlock()
	if style == nil {
		return fmt.Errorf("text style %q not found", styleID)
	}
	text, ok := el.(*MemText)
	if !ok {
		return fmt.Errorf("element %q is not a host text element", el.Name())
	}
	text.runs = []fontRun{{length: text.Length(), font: style.Font}}
	text.styleID = style.ID
	text.size = style.Size
	return nil
}

// SetFontCatalog restricts which fonts LoadFont will accept. An empty
// or nil catalog means every font is loadable.
func (d *MemDoc) SetFontCatalog(fonts ...fontref.FontRef) {
	d.catalog = make(map[string]struct{}, len(fonts))
	for _, f := range fonts {
		d.catalog[f.Key()] = struct{}{}
	}
}

// LoadFont implements the host font-loading capability.
func (d *MemDoc) LoadFont(ctx context.Context, font fontref.FontRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if font.IsZero() {
		return fmt.Errorf("empty font family")
	}
	if len(d.catalog) == 0 {
		return nil
	}
	if _, ok := d.catalog[font.Key()]; !ok {
		return fmt.Errorf("font %q is not available", font.String())
	}
	return nil
}

// FindByName returns the first node with the given name, searching all
// pages depth-first. Used by fixtures and the CLI to address nodes.
func (d *MemDoc) FindByName(name string) (Node, bool) {
	stack := make([]Node, 0, len(d.pages))
	for i := len(d.pages) - 1; i >= 0; i-- {
		stack = append(stack, d.pages[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.Name() == name {
			return node, true
		}
		children, ok := node.Children()
		if !ok {
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil, false
}

// MemNode is a container node (page, frame, group).
type MemNode struct {
	doc          *MemDoc
	id           string
	name         string
	kind         string
	locked       bool
	current      bool
	materialized bool
	children     []Node
}

func (n *MemNode) ID() string   { return n.id }
func (n *MemNode) Name() string { return n.name }
func (n *MemNode) Locked() bool { return n.locked }

func (n *MemNode) Children() ([]Node, bool) {
	if !n.materialized {
		return nil, false
	}
	return append([]Node(nil), n.children...), true
}

// SetLocked marks the node locked; its subtree is then never traversed.
func (n *MemNode) SetLocked(locked bool) { n.locked = locked }

// AddChild grafts an arbitrary node into the tree. Lets callers wrap
// elements with instrumented implementations.
func (n *MemNode) AddChild(child Node) { n.children = append(n.children, child) }

// AddFrame appends a container child.
func (n *MemNode) AddFrame(name string) *MemNode {
	frame := &MemNode{doc: n.doc, id: n.doc.newID(), name: name, kind: "frame", materialized: true}
	n.children = append(n.children, frame)
	return frame
}

// Span pairs a font with a run length for building text content.
// A Length of 0 on the final span means "the rest of the text".
type Span struct {
	Font   fontref.FontRef
	Length int
}

// AddText appends a text leaf. Spans partition the content in UTF-16
// code units; pass a single zero-length span for uniform text.
func (n *MemNode) AddText(name, text string, spans ...Span) (*MemText, error) {
	units := utf16.Encode([]rune(text))
	runs, err := spansToRuns(len(units), spans)
	if err != nil {
		return nil, fmt.Errorf("text %q: %w", name, err)
	}
	el := &MemText{
		MemNode: MemNode{doc: n.doc, id: n.doc.newID(), name: name, kind: "text", materialized: true},
		chars:   units,
		runs:    runs,
	}
	n.children = append(n.children, el)
	return el, nil
}

// NewDetachedText builds a text element without attaching it to the
// tree, so callers can graft a wrapped version via AddChild.
func (d *MemDoc) NewDetachedText(name, text string, spans ...Span) (*MemText, error) {
	units := utf16.Encode([]rune(text))
	runs, err := spansToRuns(len(units), spans)
	if err != nil {
		return nil, fmt.Errorf("text %q: %w", name, err)
	}
	return &MemText{
		MemNode: MemNode{doc: d, id: d.newID(), name: name, kind: "text", materialized: true},
		chars:   units,
		runs:    runs,
	}, nil
}

// MustAddText is AddText for fixtures built in tests.
func (n *MemNode) MustAddText(name, text string, spans ...Span) *MemText {
	el, err := n.AddText(name, text, spans...)
	if err != nil {
		panic(err)
	}
	return el
}

func spansToRuns(length int, spans []Span) ([]fontRun, error) {
	if length == 0 {
		return nil, nil
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("non-empty text needs at least one span")
	}
	runs := make([]fontRun, 0, len(spans))
	covered := 0
	for i, s := range spans {
		runLen := s.Length
		if runLen == 0 {
			if i != len(spans)-1 {
				return nil, fmt.Errorf("span %d: only the final span may omit its length", i)
			}
			runLen = length - covered
		}
		if runLen <= 0 || covered+runLen > length {
			return nil, fmt.Errorf("span %d: length %d does not fit content of %d units", i, runLen, length)
		}
		runs = append(runs, fontRun{length: runLen, font: s.Font})
		covered += runLen
	}
	if covered != length {
		return nil, fmt.Errorf("spans cover %d of %d units", covered, length)
	}
	return runs, nil
}

// fontRun is a contiguous span of code units sharing one font.
// Adjacent runs may carry equal fonts after fixture loading; the host
// merges only on mutation.
type fontRun struct {
	length int
	font   fontref.FontRef
}

// MemText is a text leaf with run-based font assignment.
type MemText struct {
	MemNode
	chars   []uint16
	runs    []fontRun
	styleID string
	size    float64
}

func (t *MemText) Children() ([]Node, bool) { return nil, true }

// Length implements TextElement.
func (t *MemText) Length() int { return len(t.chars) }

// Characters implements TextElement.
func (t *MemText) Characters() string {
	return string(utf16.Decode(t.chars))
}

// StyleID returns the linked text style, if any.
func (t *MemText) StyleID() string { return t.styleID }

// Assignment implements TextElement.
func (t *MemText) Assignment() FontAssignment {
	if len(t.runs) == 0 {
		return Uniform(fontref.FontRef{})
	}
	first := t.runs[0].font
	for _, r := range t.runs[1:] {
		if r.font != first {
			return MixedAssignment()
		}
	}
	return Uniform(first)
}

// FontAt implements TextElement.
func (t *MemText) FontAt(offset int) (fontref.FontRef, error) {
	if offset < 0 || offset >= len(t.chars) {
		return fontref.FontRef{}, fmt.Errorf("offset %d out of range [0,%d)", offset, len(t.chars))
	}
	pos := 0
	for _, r := range t.runs {
		if offset < pos+r.length {
			return r.font, nil
		}
		pos += r.length
	}
	return fontref.FontRef{}, fmt.Errorf("offset %d not covered by any run", offset)
}

// SetRangeFont implements TextElement. The run list is rebuilt with
// adjacent equal-font runs merged, mirroring how hosts normalize
// styled text after mutation.
func (t *MemText) SetRangeFont(start, end int, font fontref.FontRef) error {
	if start < 0 || end > len(t.chars) || start >= end {
		return fmt.Errorf("invalid range [%d,%d) for content of %d units", start, end, len(t.chars))
	}
	flat := make([]fontref.FontRef, 0, len(t.chars))
	for _, r := range t.runs {
		for i := 0; i < r.length; i++ {
			flat = append(flat, r.font)
		}
	}
	for i := start; i < end; i++ {
		flat[i] = font
	}
	var runs []fontRun
	for _, f := range flat {
		if len(runs) > 0 && runs[len(runs)-1].font == f {
			runs[len(runs)-1].length++
			continue
		}
		runs = append(runs, fontRun{length: 1, font: f})
	}
	t.runs = runs
	// Element-level mutation detaches any linked style.
	t.styleID = ""
	return nil
}
