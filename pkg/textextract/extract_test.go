package textextract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTXT(t *testing.T) {
	data := []byte("First line.\n\n  Second   line.\t\nThird.")
	r := bytes.NewReader(data)

	got, err := Extract(r, int64(len(data)), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "First line. Second line. Third.", got.Content)
	assert.Equal(t, 1, got.Pages)
	assert.Equal(t, "txt", got.Metadata["type"])
}

func TestExtractUnsupportedType(t *testing.T) {
	r := bytes.NewReader([]byte("data"))
	_, err := Extract(r, 4, ".docx")
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\nb\t c  "))
	assert.Equal(t, "", CleanText("   \n\t "))
}
