package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/errors"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

var (
	robotoBold   = fontref.New("Roboto", "Bold")
	interRegular = fontref.New("Inter", "Regular")
	arialRegular = fontref.New("Arial", "Regular")
)

func newTestDoc(t *testing.T) *doctree.MemDoc {
	t.Helper()
	doc := doctree.NewMemDoc()
	page := doc.AddPage("Page 1")
	page.MustAddText("title", "abcdef",
		doctree.Span{Font: robotoBold, Length: 3},
		doctree.Span{Font: arialRegular},
	)
	page.MustAddText("body", "gh", doctree.Span{Font: robotoBold})
	return doc
}

// recordMessages collects every published message of the given types.
func recordMessages(bus *Bus, types ...string) *[]Message {
	var msgs []Message
	for _, typ := range types {
		bus.Subscribe(typ, func(m Message) error {
			msgs = append(msgs, m)
			return nil
		})
	}
	return &msgs
}

func TestScanPublishesResult(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)
	seen := recordMessages(svc.Bus(), TypeScanResult)

	result, err := svc.Scan(context.Background(), "page")
	require.NoError(t, err)

	require.Len(t, result.Fonts, 2)
	assert.Equal(t, arialRegular, result.Fonts[0].Font)
	assert.Equal(t, robotoBold, result.Fonts[1].Font)
	assert.Equal(t, 2, result.Fonts[1].Count)
	assert.Contains(t, result.AvailableFonts, "Roboto")
	assert.NotEmpty(t, result.CommonStyles)

	require.Len(t, *seen, 1)
}

func TestScanInvalidScope(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)
	seen := recordMessages(svc.Bus(), TypeScanError)

	_, err := svc.Scan(context.Background(), "universe")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	require.Len(t, *seen, 1)
}

func TestReplacePublishesResultProgressAndRescan(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc, WithBatchSize(1))
	results := recordMessages(svc.Bus(), TypeReplaceResult)
	progress := recordMessages(svc.Bus(), TypeProgress)
	scans := recordMessages(svc.Bus(), TypeScanResult)

	result, err := svc.Replace(context.Background(), "page", []MappingPayload{
		{OldFont: robotoBold, NewFont: interRegular},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Replaced)

	require.Len(t, *results, 1)
	// Two elements at batch size 1: two progress notes.
	require.Len(t, *progress, 2)
	last := (*progress)[1].(ProgressNote)
	assert.Equal(t, 100, last.Progress)
	// Auto re-scan after replace.
	require.Len(t, *scans, 1)
	rescan := (*scans)[0].(ScanResult)
	for _, usage := range rescan.Fonts {
		assert.NotEqual(t, robotoBold, usage.Font)
	}
}

func TestReplaceValidation(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)
	seen := recordMessages(svc.Bus(), TypeReplaceError)

	_, err := svc.Replace(context.Background(), "page", nil)
	require.Error(t, err)

	_, err = svc.Replace(context.Background(), "page", []MappingPayload{
		{OldFont: robotoBold, NewFont: interRegular},
		{OldFont: robotoBold, NewFont: arialRegular},
	})
	require.Error(t, err)

	_, err = svc.Replace(context.Background(), "page", []MappingPayload{
		{OldFont: fontref.FontRef{}, NewFont: interRegular},
	})
	require.Error(t, err)

	assert.Len(t, *seen, 3)
}

func TestReplaceIdentityMappingIsDropped(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)

	result, err := svc.Replace(context.Background(), "page", []MappingPayload{
		{OldFont: robotoBold, NewFont: robotoBold},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.Replaced)
}

func TestSelectFont(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)

	result, err := svc.SelectFont(context.Background(), "Roboto", "Bold", "page")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	sel := doc.Selection()
	require.Len(t, sel, 2)
	assert.Equal(t, "title", sel[0].Name())
	assert.Equal(t, "body", sel[1].Name())
}

func TestCreateAndApplyStyle(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)
	scans := recordMessages(svc.Bus(), TypeScanResult)

	created, err := svc.CreateStyle(context.Background(), CreateTextStyle{
		Family: "Roboto", Style: "Bold", Name: "Heading", Size: 24,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.StyleID)

	applied, err := svc.ApplyStyle(context.Background(), ApplyTextStyle{
		StyleID: created.StyleID, Family: "Roboto", Style: "Bold", Scope: "page",
	})
	require.NoError(t, err)
	// Only "body" is uniformly Roboto Bold; "title" is half-covered.
	assert.Equal(t, 1, applied.AppliedCount)
	assert.Empty(t, applied.Errors)

	// Auto re-scan after apply.
	assert.Len(t, *scans, 1)
}

func TestRegisterDrivesServiceThroughBus(t *testing.T) {
	doc := newTestDoc(t)
	svc := NewService(nil, doc, doc)
	svc.Register()
	scans := recordMessages(svc.Bus(), TypeScanResult)

	require.NoError(t, svc.Bus().Publish(ScanFonts{Scope: "page"}))
	require.Len(t, *scans, 1)

	// An invalid request becomes an error message, never a bus error.
	errs := recordMessages(svc.Bus(), TypeScanError)
	require.NoError(t, svc.Bus().Publish(ScanFonts{Scope: "universe"}))
	assert.Len(t, *errs, 1)
}
