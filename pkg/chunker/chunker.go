package chunker

import (
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded slice of source text prepared for embedding.
type Chunk struct {
	Text  string
	Index int
	Total int
}

type Options struct {
	Size    int // target chunk size in characters
	Overlap int // overlap carried between adjacent chunks
}

func DefaultOptions() Options {
	return Options{
		Size:    500,
		Overlap: 50,
	}
}

// Split breaks text into sentence-respecting chunks. Sentences are
// accumulated greedily until the size limit would be exceeded; the next
// chunk is then seeded with the trailing Overlap/10 words of the one just
// emitted. A single sentence longer than Size is emitted whole rather
// than split mid-sentence. Empty or whitespace-only input yields no
// chunks; that is the "nothing to ingest" signal, not an error.
func Split(text string, opts Options) []Chunk {
	if opts.Size <= 0 {
		opts.Size = 500
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	overlapWords := opts.Overlap / 10

	var texts []string
	var current string

	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}

		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(trimmed) <= opts.Size {
			if current == "" {
				current = trimmed
			} else {
				current += " " + trimmed
			}
			continue
		}

		if current == "" {
			// Single oversized sentence, kept whole.
			current = trimmed
			continue
		}

		texts = append(texts, current)
		if seed := tailWords(current, overlapWords); seed != "" {
			current = seed + " " + trimmed
		} else {
			current = trimmed
		}
	}

	if strings.TrimSpace(current) != "" {
		texts = append(texts, current)
	}

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{Text: t, Index: i, Total: len(texts)}
	}
	return chunks
}

// splitSentences cuts text into units terminated by '.', '!' or '?'.
// Consecutive terminators stay attached to their sentence. A trailing
// fragment without a terminator is not a sentence and is dropped; when
// the whole text has no terminator at all the caller falls back to
// treating it as one unit.
func splitSentences(text string) []string {
	var units []string
	var current strings.Builder
	inTerminator := false

	for _, r := range text {
		isTerm := r == '.' || r == '!' || r == '?'
		if inTerminator && !isTerm {
			units = append(units, current.String())
			current.Reset()
		}
		inTerminator = isTerm
		current.WriteRune(r)
	}

	if current.Len() > 0 && inTerminator {
		units = append(units, current.String())
	}
	return units
}

// tailWords returns the last n whitespace-separated words of s.
func tailWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Split(s, " ")
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
