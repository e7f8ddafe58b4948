// Package fontscan implements the range extractor and the font
// inventory: turning per-character font assignments into minimal
// contiguous ranges and aggregating usage counts across a scope.
package fontscan

import (
	"fmt"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// FontRange is a contiguous span of a text element resolved to a
// single font. Offsets are UTF-16 code units; Start inclusive, End
// exclusive. Ranges produced by ExtractRanges are disjoint, ascending,
// cover [0, Length) exactly, and never have two adjacent ranges with
// an equal font.
type FontRange struct {
	Start int             `json:"start"`
	End   int             `json:"end"`
	Font  fontref.FontRef `json:"font"`
}

// ExtractRanges computes the minimal ordered range sequence for an
// element. Uniform elements short-circuit to a single range; mixed
// elements are resolved with one point query per position, closing the
// current range whenever the font changes.
func ExtractRanges(el doctree.TextElement) ([]FontRange, error) {
	length := el.Length()
	if length == 0 {
		return nil, nil
	}

	if a := el.Assignment(); a.Kind == doctree.AssignmentUniform {
		return []FontRange{{Start: 0, End: length, Font: a.Font}}, nil
	}

	current, err := el.FontAt(0)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", el.Name(), err)
	}
	var ranges []FontRange
	start := 0
	for pos := 1; pos < length; pos++ {
		font, err := el.FontAt(pos)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", el.Name(), err)
		}
		if font != current {
			ranges = append(ranges, FontRange{Start: start, End: pos, Font: current})
			start = pos
			current = font
		}
	}
	return append(ranges, FontRange{Start: start, End: length, Font: current}), nil
}

// ExtractFonts returns the distinct fonts referenced by an element's
// ranges, preserving first-seen order.
func ExtractFonts(el doctree.TextElement) ([]fontref.FontRef, error) {
	ranges, err := ExtractRanges(el)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(ranges))
	var fonts []fontref.FontRef
	for _, r := range ranges {
		key := r.Font.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fonts = append(fonts, r.Font)
	}
	return fonts, nil
}
