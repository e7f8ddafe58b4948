package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryStyle, SeverityError, "style not found")
	assert.Equal(t, "style (error): style not found", e.Error())

	cause := stderrors.New("boom")
	w := Wrap(cause, CategoryFontLoad, SeverityError, "load failed")
	assert.Equal(t, "fontload (error): load failed: boom", w.Error())
	assert.Equal(t, cause, stderrors.Unwrap(w))
}

func TestClassification(t *testing.T) {
	e := FontLoadError(stderrors.New("missing"), "cannot load font")
	assert.True(t, IsCategory(e, CategoryFontLoad))
	assert.False(t, IsCategory(e, CategoryStyle))
	assert.True(t, IsRetryable(e))
	assert.Equal(t, CategoryFontLoad, GetCategory(e))

	plain := stderrors.New("plain")
	assert.Equal(t, CategoryInternal, GetCategory(plain))
	assert.False(t, IsRetryable(plain))
}

func TestWithContext(t *testing.T) {
	e := ValidationError("bad scope").WithContext("scope", "universe")
	assert.Equal(t, "universe", e.Context["scope"])
}
