// Package fontref defines the FontRef value type shared by the scanner,
// the replacement engine and the style bridge. A FontRef is identified
// structurally by its (family, style) pair; the serialized key form
// "family|style" is used wherever a map key or wire identifier is needed.
package fontref

import (
	"fmt"
	"strings"
)

// KeySeparator joins family and style in the serialized key form.
const KeySeparator = "|"

// FontRef identifies a font by family and style. Immutable value;
// two refs are the same font iff both fields are equal.
type FontRef struct {
	Family string `json:"family" yaml:"family"`
	Style  string `json:"style" yaml:"style"`
}

// New constructs a FontRef with surrounding whitespace trimmed.
func New(family, style string) FontRef {
	return FontRef{Family: strings.TrimSpace(family), Style: strings.TrimSpace(style)}
}

// Key returns the serialized "family|style" map-key form.
func (f FontRef) Key() string {
	return f.Family + KeySeparator + f.Style
}

// String renders the display form, e.g. "Roboto Bold".
func (f FontRef) String() string {
	if f.Style == "" {
		return f.Family
	}
	return f.Family + " " + f.Style
}

// IsZero reports whether the ref carries no family.
func (f FontRef) IsZero() bool { return f.Family == "" }

// ParseKey parses the serialized "family|style" form produced by Key.
func ParseKey(key string) (FontRef, error) {
	family, style, ok := strings.Cut(key, KeySeparator)
	if !ok {
		return FontRef{}, fmt.Errorf("invalid font key %q: missing %q separator", key, KeySeparator)
	}
	ref := New(family, style)
	if ref.Family == "" {
		return FontRef{}, fmt.Errorf("invalid font key %q: empty family", key)
	}
	return ref, nil
}
