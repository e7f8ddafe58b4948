// Package protocol defines the message contract between the engine
// and any presentation layer, plus a synchronous in-process bus for
// delivering those messages. The NATS bridge maps the same messages
// onto subjects for out-of-process consumers.
package protocol

import (
	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/fontscan"
)

// Message names, used as bus topics and wire type tags.
const (
	TypeScanFonts       = "scan-fonts"
	TypeScanResult      = "scan-result"
	TypeScanError       = "scan-error"
	TypeReplaceFonts    = "replace-fonts"
	TypeProgress        = "progress"
	TypeReplaceResult   = "replace-result"
	TypeReplaceError    = "replace-error"
	TypeSelectFont      = "select-font"
	TypeSelectResult    = "select-result"
	TypeCreateTextStyle = "create-text-style"
	TypeApplyTextStyle  = "apply-text-style"
	TypeStyleResult     = "style-result"
	TypeStyleError      = "style-error"
)

// Message is a protocol message identified by its type tag.
type Message interface{ Type() string }

// ScanFonts requests an inventory scan.
type ScanFonts struct {
	Scope string `json:"scope"`
}

func (ScanFonts) Type() string { return TypeScanFonts }

// ScanResult carries the inventory output plus the picker lists.
type ScanResult struct {
	Fonts           []fontscan.FontUsage `json:"fonts"`
	AvailableFonts  []string             `json:"availableFonts"`
	AvailableStyles map[string][]string  `json:"availableStyles"`
	CommonStyles    []string             `json:"commonStyles"`
	TextStyles      []doctree.TextStyle  `json:"textStyles"`
}

func (ScanResult) Type() string { return TypeScanResult }

// ScanError reports a failed scan.
type ScanError struct {
	Error string `json:"error"`
}

func (ScanError) Type() string { return TypeScanError }

// MappingPayload is the wire form of a replacement mapping.
type MappingPayload struct {
	OldFont fontref.FontRef `json:"oldFont"`
	NewFont fontref.FontRef `json:"newFont"`
}

// ReplaceFonts requests a replacement operation.
type ReplaceFonts struct {
	Scope    string           `json:"scope"`
	Mappings []MappingPayload `json:"mappings"`
}

func (ReplaceFonts) Type() string { return TypeReplaceFonts }

// ProgressNote is the chunk-yield notification.
type ProgressNote struct {
	OperationID string `json:"operationId"`
	Progress    int    `json:"progress"`
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
}

func (ProgressNote) Type() string { return TypeProgress }

// ReplaceResult is the final outcome of a replacement.
type ReplaceResult struct {
	Success  bool     `json:"success"`
	Replaced int      `json:"replaced"`
	Errors   []string `json:"errors"`
}

func (ReplaceResult) Type() string { return TypeReplaceResult }

// ReplaceError reports an unrecoverable failure before completion.
type ReplaceError struct {
	Error string `json:"error"`
}

func (ReplaceError) Type() string { return TypeReplaceError }

// SelectFont requests selecting all elements using a font.
type SelectFont struct {
	Family string `json:"family"`
	Style  string `json:"style"`
	Scope  string `json:"scope"`
}

func (SelectFont) Type() string { return TypeSelectFont }

// SelectResult reports how many elements were selected.
type SelectResult struct {
	Count int `json:"count"`
}

func (SelectResult) Type() string { return TypeSelectResult }

// CreateTextStyle requests creation of a named style for a font.
type CreateTextStyle struct {
	Family string  `json:"family"`
	Style  string  `json:"style"`
	Name   string  `json:"name,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

func (CreateTextStyle) Type() string { return TypeCreateTextStyle }

// ApplyTextStyle requests bulk application of a style to elements
// dominated by the target font.
type ApplyTextStyle struct {
	StyleID string `json:"styleId"`
	Family  string `json:"family"`
	Style   string `json:"style"`
	Scope   string `json:"scope"`
}

func (ApplyTextStyle) Type() string { return TypeApplyTextStyle }

// StyleResult reports a completed style operation.
type StyleResult struct {
	StyleID      string `json:"styleId,omitempty"`
	StyleName    string `json:"styleName,omitempty"`
	AppliedCount int    `json:"appliedCount,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

func (StyleResult) Type() string { return TypeStyleResult }

// StyleError reports a failed style operation.
type StyleError struct {
	Error string `json:"error"`
}

func (StyleError) Type() string { return TypeStyleError }
