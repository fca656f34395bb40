package chunking

import "strings"

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Splitter cuts text into overlapping windows, preferring sentence and word
// boundaries in the back half of each window over mid-word cuts.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split returns the ordered chunk sequence for text. Chunk boundaries are a
// pure function of (text, ChunkSize, Overlap), so re-ingesting the same
// document always produces identical chunks.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	out := make([]string, 0, len(runes)/(s.ChunkSize-s.Overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end < len(runes) {
			end = s.adjustBoundary(runes, start, end)
		}

		// The cursor advances from the unclamped end; only the slice is
		// bounded by the text length.
		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:sliceEnd]))
		if chunk != "" {
			out = append(out, chunk)
		}

		start = end - s.Overlap
	}
	return out
}

// adjustBoundary moves end back to just after the last sentence terminator
// inside the window, or to the last space, but only when the boundary sits
// strictly past the window midpoint. Otherwise the full window is kept and a
// mid-word cut is accepted.
func (s *Splitter) adjustBoundary(runes []rune, start, end int) int {
	half := start + s.ChunkSize/2
	if dot := lastIndexBefore(runes, '.', start, end); dot > half {
		return dot + 1
	}
	if space := lastIndexBefore(runes, ' ', start, end); space > half {
		return space
	}
	return end
}

// lastIndexBefore finds the last occurrence of r in runes[start:end], or -1.
func lastIndexBefore(runes []rune, r rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
