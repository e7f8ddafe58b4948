package fontref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	ref := New("Roboto", "Bold Italic")
	assert.Equal(t, "Roboto|Bold Italic", ref.Key())

	parsed, err := ParseKey(ref.Key())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}

func TestParseKeyErrors(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"missing separator", "Roboto Bold"},
		{"empty family", "|Bold"},
		{"empty string", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseKey(tc.key)
			assert.Error(t, err)
		})
	}
}

func TestParseKeyAllowsEmptyStyle(t *testing.T) {
	ref, err := ParseKey("Arial|")
	require.NoError(t, err)
	assert.Equal(t, FontRef{Family: "Arial"}, ref)
}

func TestString(t *testing.T) {
	assert.Equal(t, "Roboto Bold", New("Roboto", "Bold").String())
	assert.Equal(t, "Roboto", FontRef{Family: "Roboto"}.String())
}

func TestCompareIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, 0, CompareStrings("arial", "Arial"))
	assert.Negative(t, Compare(New("arial", "Regular"), New("Zapfino", "Regular")))
	// Family is the primary key, style the secondary.
	assert.Negative(t, Compare(New("Arial", "Bold"), New("Arial", "Regular")))
	assert.Positive(t, Compare(New("Roboto", "Bold"), New("Arial", "Regular")))
}

func TestSort(t *testing.T) {
	refs := []FontRef{
		New("roboto", "Bold"),
		New("Arial", "Regular"),
		New("Roboto", "Black"),
	}
	Sort(refs)
	assert.Equal(t, []FontRef{
		New("Arial", "Regular"),
		New("Roboto", "Black"),
		New("roboto", "Bold"),
	}, refs)
}
