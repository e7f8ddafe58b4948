package natsbridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/protocol"
)

func newBridge(t *testing.T) *Bridge {
	t.Helper()
	doc := doctree.NewMemDoc()
	page := doc.AddPage("Page 1")
	page.MustAddText("title", "abcd", doctree.Span{Font: fontref.New("Roboto", "Bold")})
	svc := protocol.NewService(nil, doc, doc)
	return NewBridge(nil, svc, "fontsweep")
}

func decode(t *testing.T, data []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func request(t *testing.T, m protocol.Message) []byte {
	t.Helper()
	data, err := Encode(m)
	require.NoError(t, err)
	return data
}

func TestDispatchScan(t *testing.T) {
	b := newBridge(t)

	reply := b.Dispatch(context.Background(), protocol.TypeScanFonts,
		request(t, protocol.ScanFonts{Scope: "document"}))

	env := decode(t, reply)
	assert.Equal(t, protocol.TypeScanResult, env.Type)
	var result protocol.ScanResult
	require.NoError(t, json.Unmarshal(env.Payload, &result))
	require.Len(t, result.Fonts, 1)
	assert.Equal(t, "Roboto", result.Fonts[0].Font.Family)
}

func TestDispatchReplace(t *testing.T) {
	b := newBridge(t)

	reply := b.Dispatch(context.Background(), protocol.TypeReplaceFonts,
		request(t, protocol.ReplaceFonts{
			Scope: "document",
			Mappings: []protocol.MappingPayload{{
				OldFont: fontref.New("Roboto", "Bold"),
				NewFont: fontref.New("Inter", "Regular"),
			}},
		}))

	env := decode(t, reply)
	assert.Equal(t, protocol.TypeReplaceResult, env.Type)
	var result protocol.ReplaceResult
	require.NoError(t, json.Unmarshal(env.Payload, &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Replaced)
}

func TestDispatchErrorsBecomeReplies(t *testing.T) {
	b := newBridge(t)

	reply := b.Dispatch(context.Background(), protocol.TypeScanFonts,
		request(t, protocol.ScanFonts{Scope: "universe"}))
	env := decode(t, reply)
	assert.Equal(t, protocol.TypeScanError, env.Type)

	reply = b.Dispatch(context.Background(), protocol.TypeReplaceFonts,
		request(t, protocol.ReplaceFonts{Scope: "document"}))
	env = decode(t, reply)
	assert.Equal(t, protocol.TypeReplaceError, env.Type)

	reply = b.Dispatch(context.Background(), protocol.TypeApplyTextStyle,
		request(t, protocol.ApplyTextStyle{StyleID: "missing", Scope: "document"}))
	env = decode(t, reply)
	assert.Equal(t, protocol.TypeStyleError, env.Type)
}

func TestDispatchMalformedEnvelope(t *testing.T) {
	b := newBridge(t)

	env := decode(t, b.Dispatch(context.Background(), protocol.TypeScanFonts, []byte("not json")))
	assert.Equal(t, protocol.TypeScanError, env.Type)

	// Envelope typed for a different subject is refused.
	env = decode(t, b.Dispatch(context.Background(), protocol.TypeScanFonts,
		request(t, protocol.ReplaceFonts{Scope: "document"})))
	assert.Equal(t, protocol.TypeScanError, env.Type)
}

func TestProgressSubject(t *testing.T) {
	b := newBridge(t)
	assert.Equal(t, "fontsweep.progress.op-1", b.ProgressSubject("op-1"))
}
