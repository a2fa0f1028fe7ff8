package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractText("text/plain", []byte("pitch deck notes"))
	require.NoError(t, err)
	assert.Equal(t, "pitch deck notes", text)

	text, err = e.ExtractText("text/csv", []byte("metric,value\narr,400k"))
	require.NoError(t, err)
	assert.Contains(t, text, "arr,400k")
}

func TestExtractUnsupportedType(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText("image/png", []byte{0x89, 0x50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractCorruptPDF(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText("application/pdf", []byte("not a pdf"))
	assert.Error(t, err)
}
