package fontscan

import (
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/util/sets"
)

// FontUsage pairs a font with the number of distinct character ranges
// resolved to it across the scanned scope. Counting is per-range, not
// per-element: a mixed element contributes once per matching range,
// which reflects the actual scope of a replacement.
type FontUsage struct {
	Font  fontref.FontRef `json:"font"`
	Count int             `json:"count"`
}

// DocumentFonts is the best-effort whole-document family/style listing
// used to populate replacement pickers. It is a convenience list only
// and must never be used to validate that a font can be loaded.
type DocumentFonts struct {
	AvailableFamilies []string            `json:"availableFamilies"`
	StylesByFamily    map[string][]string `json:"stylesByFamily"`
}

// commonFamilies is unioned into CollectDocumentFonts so the picker is
// never empty on a blank document.
var commonFamilies = []string{
	"Arial",
	"Courier New",
	"Georgia",
	"Helvetica",
	"Inter",
	"Roboto",
	"Times New Roman",
	"Verdana",
}

// Inventory scans a host document for font usage. It holds no state
// between scans; every call walks the live tree, since the document
// may be mutated externally between invocations.
type Inventory struct {
	host doctree.Host
}

// NewInventory creates an inventory over the given host.
func NewInventory(host doctree.Host) *Inventory {
	return &Inventory{host: host}
}

// Scan walks the scope and aggregates per-range font usage, sorted by
// (family, style) with locale-aware case-insensitive collation.
func (inv *Inventory) Scan(scope doctree.Scope) ([]FontUsage, error) {
	roots, err := doctree.ResolveScope(inv.host, scope)
	if err != nil {
		return nil, err
	}
	elements := doctree.CollectTextElements(roots)

	usage := make(map[string]*FontUsage)
	for _, el := range elements {
		ranges, err := ExtractRanges(el)
		if err != nil {
			slog.Warn("skipping unreadable text element", "element", el.Name(), "error", err)
			continue
		}
		for _, r := range ranges {
			key := r.Font.Key()
			if u, ok := usage[key]; ok {
				u.Count++
				continue
			}
			usage[key] = &FontUsage{Font: r.Font, Count: 1}
		}
	}

	out := make([]FontUsage, 0, len(usage))
	for _, u := range usage {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		return fontref.Compare(out[i].Font, out[j].Font) < 0
	})
	return out, nil
}

// FindElements returns the text elements in scope with at least one
// range resolved to the given font, in traversal order. Backs the
// select-font operation.
func (inv *Inventory) FindElements(scope doctree.Scope, font fontref.FontRef) ([]doctree.TextElement, error) {
	roots, err := doctree.ResolveScope(inv.host, scope)
	if err != nil {
		return nil, err
	}
	var matched []doctree.TextElement
	for _, el := range doctree.CollectTextElements(roots) {
		fonts, err := ExtractFonts(el)
		if err != nil {
			slog.Warn("skipping unreadable text element", "element", el.Name(), "error", err)
			continue
		}
		for _, f := range fonts {
			if f == font {
				matched = append(matched, el)
				break
			}
		}
	}
	return matched, nil
}

// CollectDocumentFonts scans every loaded page of the whole document,
// independent of any operational scope, and unions in the built-in
// common family list.
func (inv *Inventory) CollectDocumentFonts() DocumentFonts {
	families := sets.New[string]()
	byFamily := make(map[string]sets.Set[string])

	addFont := func(f fontref.FontRef) {
		if f.IsZero() {
			return
		}
		families.Add(f.Family)
		if byFamily[f.Family] == nil {
			byFamily[f.Family] = sets.New[string]()
		}
		if f.Style != "" {
			byFamily[f.Family].Add(f.Style)
		}
	}

	roots, err := doctree.ResolveScope(inv.host, doctree.ScopeDocument)
	if err == nil {
		for _, el := range doctree.CollectTextElements(roots) {
			fonts, err := ExtractFonts(el)
			if err != nil {
				continue
			}
			for _, f := range fonts {
				addFont(f)
			}
		}
	}

	for _, fam := range commonFamilies {
		families.Add(fam)
		if byFamily[fam] == nil {
			byFamily[fam] = sets.New("Regular", "Bold", "Italic", "Bold Italic")
		}
	}

	out := DocumentFonts{
		AvailableFamilies: families.Values(),
		StylesByFamily:    make(map[string][]string, len(byFamily)),
	}
	fontref.SortStrings(out.AvailableFamilies)
	for fam, styles := range byFamily {
		vals := styles.Values()
		fontref.SortStrings(vals)
		out.StylesByFamily[fam] = vals
	}
	return out
}

// CommonFamilies exposes the built-in family list for protocol payloads.
func CommonFamilies() []string {
	return append([]string(nil), commonFamilies...)
}
