// Package chunker splits raw document text into overlapping pieces that
// prefer to end on a sentence boundary.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// minChunkChars is the substantiveness floor: shorter trimmed pieces are
// silently dropped.
const minChunkChars = 50

// boundaryShare is how far into the window a sentence boundary must sit
// before the window is cut short at it.
const boundaryShare = 0.7

// Chunker splits text into windows of at most Size bytes, stepping back
// Overlap bytes between consecutive windows.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window geometry and creates a Chunker.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got %d for size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns the trimmed, non-empty chunks of text in document order.
// Pieces whose trimmed length does not exceed minChunkChars are dropped
// without being counted or retried.
func (c *Chunker) Split(text string) []string {
	var chunks []string

	start := 0
	for start < len(text) {
		end := start + c.size
		next := end - c.overlap
		if end >= len(text) {
			end = len(text)
			next = len(text)
		} else if boundary := lastBoundary(text, start, end); boundary >= 0 &&
			float64(boundary-start) > float64(c.size)*boundaryShare {
			// Cut at the sentence terminator (inclusive) when it sits deep
			// enough in the window.
			end = boundary + 1
			next = boundary + 1 - c.overlap
		}

		piece := strings.TrimSpace(text[start:end])
		if utf8.RuneCountInString(piece) > minChunkChars {
			chunks = append(chunks, piece)
		}

		// The cursor must strictly advance or the loop never terminates.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// lastBoundary returns the absolute index of the last sentence terminator
// ('.' or line break) in text[start:end), or -1.
func lastBoundary(text string, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if text[i] == '.' || text[i] == '\n' {
			return i
		}
	}
	return -1
}
