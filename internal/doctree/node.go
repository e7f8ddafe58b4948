// Package doctree models the host document as a set of capability
// interfaces: a node tree with lazily materialized subtrees, text
// elements carrying per-range font assignments, and a style store for
// named reusable text styles. The engine packages consume only these
// interfaces; MemDoc provides an in-memory implementation for the CLI
// and tests.
package doctree

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// Scope selects the subset of the document an operation targets.
type Scope string

const (
	ScopeSelection Scope = "selection"
	ScopePage      Scope = "page"
	ScopeDocument  Scope = "document"
)

// ParseScope normalizes a raw scope string.
func ParseScope(raw string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(raw))) {
	case ScopeSelection:
		return ScopeSelection, nil
	case ScopePage:
		return ScopePage, nil
	case ScopeDocument, "":
		return ScopeDocument, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want selection, page or document)", raw)
	}
}

// AssignmentKind tags a FontAssignment.
type AssignmentKind int

const (
	AssignmentUniform AssignmentKind = iota
	AssignmentMixed
)

// FontAssignment is the element-level font report: either one font
// applies to the whole content, or the element is mixed and callers
// must point-query per offset. Explicit tagged union, no sentinel values.
type FontAssignment struct {
	Kind AssignmentKind
	Font fontref.FontRef // valid only when Kind == AssignmentUniform
}

// Uniform builds a uniform assignment.
func Uniform(f fontref.FontRef) FontAssignment {
	return FontAssignment{Kind: AssignmentUniform, Font: f}
}

// MixedAssignment builds a mixed assignment.
func MixedAssignment() FontAssignment {
	return FontAssignment{Kind: AssignmentMixed}
}

// Node is a host document node. Implementations are owned by the host;
// the engine never constructs nodes.
type Node interface {
	ID() string
	Name() string
	Locked() bool
	// Children returns the child nodes. ok is false when the host has
	// not materialized the subtree yet; callers skip such nodes rather
	// than treating them as errors.
	Children() (children []Node, ok bool)
}

// TextElement is a leaf node carrying styled text. Offsets are UTF-16
// code units, matching the host's character addressing.
type TextElement interface {
	Node
	// Length returns the content length in UTF-16 code units.
	Length() int
	// Characters returns the text content.
	Characters() string
	// Assignment reports the element-level font assignment.
	Assignment() FontAssignment
	// FontAt returns the font applied at the given offset.
	FontAt(offset int) (fontref.FontRef, error)
	// SetRangeFont rewrites the font on [start, end).
	SetRangeFont(start, end int, font fontref.FontRef) error
}

// TextStyle is a host-managed named font/size preset.
type TextStyle struct {
	ID   string          `json:"id" yaml:"id"`
	Name string          `json:"name" yaml:"name"`
	Font fontref.FontRef `json:"font" yaml:"font"`
	Size float64         `json:"size" yaml:"size"`
}

// StyleStore exposes the host's reusable text styles.
type StyleStore interface {
	TextStyles() []TextStyle
	CreateTextStyle(name string, font fontref.FontRef, size float64) (TextStyle, error)
	// ApplyTextStyle assigns the style to a whole element.
	ApplyTextStyle(el TextElement, styleID string) error
}

// Host is the document capability surface the engine consumes.
type Host interface {
	StyleStore
	// Selection returns the host's current selection snapshot.
	Selection() []Node
	// SetSelection replaces the host's selection.
	SetSelection(nodes []Node) error
	// CurrentPage returns the active page, if any.
	CurrentPage() (Node, bool)
	// Pages returns every page known to the document root, including
	// pages whose subtrees are not materialized.
	Pages() []Node
}
