package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	assert.Nil(t, Split("", DefaultOptions()))
	assert.Nil(t, Split("   ", DefaultOptions()))
	assert.Nil(t, Split("\n\t  \n", DefaultOptions()))
}

func TestSplitSingleShortText(t *testing.T) {
	chunks := Split("Hello world.", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Total)
}

func TestSplitNoTerminatorTreatsWholeTextAsOneUnit(t *testing.T) {
	chunks := Split("just a run of words with no sentence ending", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a run of words with no sentence ending", chunks[0].Text)
}

func TestSplitGreedyAccumulation(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "Sentence %02d ends here. ", i)
	}

	chunks := Split(sb.String(), Options{Size: 100, Overlap: 0})

	// Each sentence is 22 chars; four fit in 100 with joining spaces.
	require.Len(t, chunks, 3)
	assert.Equal(t, "Sentence 00 ends here. Sentence 01 ends here. Sentence 02 ends here. Sentence 03 ends here.", chunks[0].Text)
	assert.Equal(t, "Sentence 08 ends here. Sentence 09 ends here.", chunks[2].Text)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, 3, c.Total)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 100)
	}
}

func TestSplitKeepsEverySentence(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "This is numbered sentence %d of the corpus. ", i)
	}

	chunks := Split(sb.String(), Options{Size: 500, Overlap: 50})
	require.GreaterOrEqual(t, len(chunks), 3)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString(" ")
	}
	for i := 0; i < 40; i++ {
		assert.Contains(t, joined.String(), fmt.Sprintf("This is numbered sentence %d of the corpus.", i))
	}
}

func TestSplitOverlapSeedsNextChunk(t *testing.T) {
	text := "alpha beta gamma delta one. alpha beta gamma delta two."
	chunks := Split(text, Options{Size: 30, Overlap: 30})

	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha beta gamma delta one.", chunks[0].Text)
	// Overlap of 30 carries 3 trailing words into the next chunk.
	assert.Equal(t, "gamma delta one. alpha beta gamma delta two.", chunks[1].Text)
}

func TestSplitSmallOverlapDegradesToNone(t *testing.T) {
	text := "alpha beta gamma delta one. alpha beta gamma delta two."
	chunks := Split(text, Options{Size: 30, Overlap: 9})

	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha beta gamma delta one.", chunks[0].Text)
	assert.Equal(t, "alpha beta gamma delta two.", chunks[1].Text)
}

func TestSplitOversizedSentenceKeptWhole(t *testing.T) {
	long := strings.Repeat("word ", 120) + "end."
	chunks := Split(long, Options{Size: 100, Overlap: 10})

	require.Len(t, chunks, 1)
	assert.Greater(t, utf8.RuneCountInString(chunks[0].Text), 100)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "end."))
}

func TestSplitDropsUnterminatedTrailingFragment(t *testing.T) {
	chunks := Split("A complete sentence. trailing fragment without terminator", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "A complete sentence.", chunks[0].Text)
}

func TestSplitConsecutiveTerminators(t *testing.T) {
	chunks := Split("Really?! Yes. Absolutely!", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "Really?! Yes. Absolutely!", chunks[0].Text)
}
