// Package styles bridges fonts to the host's named reusable text
// styles: listing, matching, creating and bulk-applying them.
package styles

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/errors"
	"git.home.luguber.info/inful/fontsweep/internal/fontload"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/fontscan"
)

// DefaultSize is used when a style is created without an explicit size.
const DefaultSize = 12

// Bridge exposes the style operations over a host document.
type Bridge struct {
	host   doctree.Host
	loader fontload.Loader
}

// NewBridge creates a bridge over the given host and font loader.
func NewBridge(host doctree.Host, loader fontload.Loader) *Bridge {
	return &Bridge{host: host, loader: loader}
}

// ListStyles returns the host's text styles.
func (b *Bridge) ListStyles() []doctree.TextStyle {
	return b.host.TextStyles()
}

// FindMatching returns the first existing style whose font equals the
// given (family, style) pair exactly.
func (b *Bridge) FindMatching(font fontref.FontRef) (doctree.TextStyle, bool) {
	for _, s := range b.host.TextStyles() {
		if s.Font == font {
			return s, true
		}
	}
	return doctree.TextStyle{}, false
}

// CreateStyle creates a named style for the font. The font must load
// first; on load failure no style object is produced. An empty name
// defaults to the font's display form, a zero size to DefaultSize.
func (b *Bridge) CreateStyle(ctx context.Context, font fontref.FontRef, name string, size float64) (doctree.TextStyle, error) {
	if err := b.loader.LoadFont(ctx, font); err != nil {
		return doctree.TextStyle{}, errors.FontLoadError(err, fmt.Sprintf("cannot create style for unloadable font %s", font))
	}
	if name == "" {
		name = font.String()
	}
	if size <= 0 {
		size = DefaultSize
	}
	style, err := b.host.CreateTextStyle(name, font, size)
	if err != nil {
		return doctree.TextStyle{}, errors.Wrap(err, errors.CategoryStyle, errors.SeverityError, "host rejected style creation")
	}
	slog.Info("created text style", "style", style.Name, "font", font.String())
	return style, nil
}

// ApplyResult reports a bulk style application.
type ApplyResult struct {
	AppliedCount int      `json:"appliedCount"`
	Errors       []string `json:"errors"`
}

// ApplyStyle assigns the style to every element in scope dominated by
// the target font. Style assignment is whole-element, so an element
// qualifies only when it is uniformly the target font or the target's
// ranges cover a strict majority of its characters; elements below
// the threshold are left unmodified and not counted as errors.
func (b *Bridge) ApplyStyle(ctx context.Context, scope doctree.Scope, styleID string, target fontref.FontRef) (ApplyResult, error) {
	style, ok := b.styleByID(styleID)
	if !ok {
		return ApplyResult{}, errors.StyleError(fmt.Sprintf("text style %q not found", styleID))
	}
	if err := b.loader.LoadFont(ctx, style.Font); err != nil {
		return ApplyResult{}, errors.FontLoadError(err, fmt.Sprintf("cannot apply style %q: font %s failed to load", style.Name, style.Font))
	}

	roots, err := doctree.ResolveScope(b.host, scope)
	if err != nil {
		return ApplyResult{}, errors.DocumentError(err, fmt.Sprintf("failed to resolve scope %q", scope))
	}

	var result ApplyResult
	for _, el := range doctree.CollectTextElements(roots) {
		dominated, err := coversMajority(el, target)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to read element %q: %v", el.Name(), err))
			continue
		}
		if !dominated {
			continue
		}
		if err := b.host.ApplyTextStyle(el, style.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("element %q: %v", el.Name(), err))
			continue
		}
		result.AppliedCount++
	}
	return result, nil
}

func (b *Bridge) styleByID(id string) (doctree.TextStyle, bool) {
	for _, s := range b.host.TextStyles() {
		if s.ID == id {
			return s, true
		}
	}
	return doctree.TextStyle{}, false
}

// coversMajority reports whether the target font covers a strict
// majority (>50%) of the element's characters. Uniform target
// elements trivially qualify; empty elements never do.
func coversMajority(el doctree.TextElement, target fontref.FontRef) (bool, error) {
	length := el.Length()
	if length == 0 {
		return false, nil
	}
	if a := el.Assignment(); a.Kind == doctree.AssignmentUniform {
		return a.Font == target, nil
	}
	ranges, err := fontscan.ExtractRanges(el)
	if err != nil {
		return false, err
	}
	covered := 0
	for _, r := range ranges {
		if r.Font == target {
			covered += r.End - r.Start
		}
	}
	return covered*2 > length, nil
}
