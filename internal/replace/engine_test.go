package replace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/fontscan"
)

var (
	robotoBold   = fontref.New("Roboto", "Bold")
	interRegular = fontref.New("Inter", "Regular")
	arialRegular = fontref.New("Arial", "Regular")
	zapfino      = fontref.New("Zapfino", "Regular")
)

// snapshotRanges captures the per-element range assignment of a scope
// for before/after equality checks.
func snapshotRanges(t *testing.T, host doctree.Host, scope doctree.Scope) map[string][]fontscan.FontRange {
	t.Helper()
	roots, err := doctree.ResolveScope(host, scope)
	require.NoError(t, err)
	snap := make(map[string][]fontscan.FontRange)
	for _, el := range doctree.CollectTextElements(roots) {
		ranges, err := fontscan.ExtractRanges(el)
		require.NoError(t, err)
		snap[el.ID()] = ranges
	}
	return snap
}

func TestReplaceRewritesMatchingRanges(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	page.MustAddText("title", "abcdef",
		doctree.Span{Font: robotoBold, Length: 3},
		doctree.Span{Font: arialRegular},
	)
	page.MustAddText("body", "gh", doctree.Span{Font: robotoBold})

	engine := NewEngine(doc, doc)
	result := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: robotoBold, New: interRegular}})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ReplacedCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t, StateCompleted, engine.State())

	usages, err := fontscan.NewInventory(doc).Scan(doctree.ScopePage)
	require.NoError(t, err)
	assert.Equal(t, []fontscan.FontUsage{
		{Font: arialRegular, Count: 1},
		{Font: interRegular, Count: 2},
	}, usages)
}

func TestReplaceRoundTripRestoresAssignment(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	page.MustAddText("mixed", "abcdefgh",
		doctree.Span{Font: robotoBold, Length: 2},
		doctree.Span{Font: arialRegular, Length: 3},
		doctree.Span{Font: robotoBold},
	)
	page.MustAddText("uniform", "xyz", doctree.Span{Font: robotoBold})

	before := snapshotRanges(t, doc, doctree.ScopePage)

	engine := NewEngine(doc, doc)
	first := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: robotoBold, New: zapfino}})
	require.True(t, first.Success)
	require.Equal(t, 3, first.ReplacedCount)

	second := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: zapfino, New: robotoBold}})
	require.True(t, second.Success)
	require.Equal(t, 3, second.ReplacedCount)

	assert.Equal(t, before, snapshotRanges(t, doc, doctree.ScopePage))
}

func TestReplaceTargetLoadFailureLeavesDocumentUnmodified(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	page.MustAddText("t", "abcd", doctree.Span{Font: robotoBold})
	// Catalog omits the target font.
	doc.SetFontCatalog(robotoBold, arialRegular)

	before := snapshotRanges(t, doc, doctree.ScopePage)

	engine := NewEngine(doc, doc)
	result := engine.Replace(context.Background(), doctree.ScopePage, []Mapping{
		{Old: robotoBold, New: arialRegular},
		{Old: robotoBold, New: zapfino},
	})

	assert.False(t, result.Success)
	assert.Zero(t, result.ReplacedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Zapfino")
	assert.Equal(t, StateFailed, engine.State())

	assert.Equal(t, before, snapshotRanges(t, doc, doctree.ScopePage))
}

func TestReplaceSourceLoadFailureForfeitsMapping(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	page.MustAddText("a", "aa", doctree.Span{Font: robotoBold})
	page.MustAddText("b", "bb", doctree.Span{Font: arialRegular})
	// Roboto Bold (a source) is not loadable; both targets are.
	doc.SetFontCatalog(arialRegular, interRegular, zapfino)

	engine := NewEngine(doc, doc)
	result := engine.Replace(context.Background(), doctree.ScopePage, []Mapping{
		{Old: robotoBold, New: interRegular},
		{Old: arialRegular, New: zapfino},
	})

	// The forfeited source is not an operation error.
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ReplacedCount)
	assert.Empty(t, result.Errors)

	usages, err := fontscan.NewInventory(doc).Scan(doctree.ScopePage)
	require.NoError(t, err)
	assert.Equal(t, []fontscan.FontUsage{
		{Font: robotoBold, Count: 1},
		{Font: zapfino, Count: 1},
	}, usages)
}

// failingElement simulates an element invalidated mid-operation.
type failingElement struct{ *doctree.MemText }

func (f *failingElement) SetRangeFont(int, int, fontref.FontRef) error {
	return errors.New("node was removed")
}

func TestReplacePartialSuccess(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	page.MustAddText("good", "aa", doctree.Span{Font: robotoBold})
	broken, err := doc.NewDetachedText("broken", "bb", doctree.Span{Font: robotoBold})
	require.NoError(t, err)
	page.AddChild(&failingElement{broken})

	engine := NewEngine(doc, doc)
	result := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: robotoBold, New: interRegular}})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ReplacedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken")
}

// recordingElement captures the order of range rewrites.
type recordingElement struct {
	*doctree.MemText
	calls [][2]int
}

func (r *recordingElement) SetRangeFont(start, end int, font fontref.FontRef) error {
	r.calls = append(r.calls, [2]int{start, end})
	return r.MemText.SetRangeFont(start, end, font)
}

func TestReplaceRewritesDescendingOffsets(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	inner, err := doc.NewDetachedText("t", "abcdefgh",
		doctree.Span{Font: robotoBold, Length: 2},
		doctree.Span{Font: arialRegular, Length: 2},
		doctree.Span{Font: robotoBold, Length: 2},
		doctree.Span{Font: arialRegular},
	)
	require.NoError(t, err)
	rec := &recordingElement{MemText: inner}
	page.AddChild(rec)

	engine := NewEngine(doc, doc)
	result := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: robotoBold, New: zapfino}})
	require.True(t, result.Success)
	require.Equal(t, 2, result.ReplacedCount)

	// Last range first.
	require.Len(t, rec.calls, 2)
	assert.Equal(t, [2]int{4, 6}, rec.calls[0])
	assert.Equal(t, [2]int{0, 2}, rec.calls[1])
}

func TestReplaceEmptyMappings(t *testing.T) {
	doc := doctree.NewMemDoc()
	doc.AddPage("p")
	engine := NewEngine(doc, doc)
	result := engine.Replace(context.Background(), doctree.ScopePage, nil)
	assert.True(t, result.Success)
	assert.Zero(t, result.ReplacedCount)
	assert.Empty(t, result.Errors)
}

func TestReplaceEmitsProgressPerChunk(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	for i := 0; i < 3; i++ {
		page.MustAddText(string(rune('a'+i)), "xx", doctree.Span{Font: robotoBold})
	}

	var events []Progress
	engine := NewEngine(doc, doc,
		WithBatchSize(1),
		WithProgress(func(p Progress) { events = append(events, p) }),
	)
	result := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: robotoBold, New: interRegular}})
	require.True(t, result.Success)

	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].Processed)
	assert.Equal(t, 3, events[2].Processed)
	assert.Equal(t, 100, events[2].Percent)
	assert.NotEmpty(t, events[0].OperationID)
}

func TestReplaceYieldCancellation(t *testing.T) {
	doc := doctree.NewMemDoc()
	page := doc.AddPage("p")
	for i := 0; i < 4; i++ {
		page.MustAddText(string(rune('a'+i)), "xx", doctree.Span{Font: robotoBold})
	}

	stop := errors.New("host closed the plugin")
	engine := NewEngine(doc, doc,
		WithBatchSize(2),
		WithYield(func(context.Context) error { return stop }),
	)
	result := engine.Replace(context.Background(), doctree.ScopePage,
		[]Mapping{{Old: robotoBold, New: interRegular}})

	// Mutations already applied persist; the stop is recorded.
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ReplacedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "2 of 4")
}
