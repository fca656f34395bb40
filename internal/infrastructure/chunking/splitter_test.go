package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextReturnsSingleTrimmedSegment(t *testing.T) {
	s := NewSplitter(1000, 200)
	chunks := s.Split("  hello world.  ")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world." {
		t.Fatalf("expected trimmed input back, got %q", chunks[0])
	}
}

func TestSplitWhitespaceOnlyReturnsNothing(t *testing.T) {
	s := NewSplitter(1000, 200)
	if chunks := s.Split("   \n\t  "); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitPrefersSentenceBoundaryInBackHalf(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := strings.Repeat("a", 700) + "." + strings.Repeat("b", 499)

	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != strings.Repeat("a", 700)+"." {
		t.Fatalf("first chunk should end just after the sentence terminator, got len=%d", len(chunks[0]))
	}
	if chunks[1] != strings.Repeat("a", 199)+"."+strings.Repeat("b", 499) {
		t.Fatalf("second chunk should start at end-overlap, got len=%d", len(chunks[1]))
	}
}

func TestSplitFallsBackToWordBoundary(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := strings.Repeat("a", 600) + " " + strings.Repeat("b", 599)

	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != strings.Repeat("a", 600) {
		t.Fatalf("first chunk should end at the word boundary, got len=%d", len(chunks[0]))
	}
	if chunks[1] != strings.Repeat("a", 200)+" "+strings.Repeat("b", 599) {
		t.Fatalf("unexpected second chunk, got len=%d", len(chunks[1]))
	}
}

func TestSplitBoundaryAtExactMidpointIsIgnored(t *testing.T) {
	// The back-half comparison is strict: a terminator exactly at
	// start+size/2 does not shorten the window.
	s := NewSplitter(1000, 200)
	text := strings.Repeat("a", 500) + "." + strings.Repeat("b", 700)

	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1000 {
		t.Fatalf("expected full-size first window, got len=%d", len(chunks[0]))
	}
	if chunks[1] != strings.Repeat("b", 401) {
		t.Fatalf("unexpected tail chunk, got len=%d", len(chunks[1]))
	}
}

func TestSplitMidWordCutAsLastResort(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := strings.Repeat("a", 1500)

	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[1]) != 700 {
		t.Fatalf("expected lengths 1000/700, got %d/%d", len(chunks[0]), len(chunks[1]))
	}
	// Consecutive windows share exactly the overlap in source offsets.
	if chunks[0][800:] != chunks[1][:200] {
		t.Fatalf("expected 200-char overlap between consecutive chunks")
	}
}

func TestSplitRepeatedWordsStayWithinWindowSize(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := strings.Repeat("word ", 400)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for 2000 chars, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1000 {
			t.Fatalf("chunk %d exceeds window size: %d", i, len(chunk))
		}
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Fatalf("chunk %d not trimmed: %q", i, chunk)
		}
		// Word-boundary preference means no chunk cuts through "word".
		for _, w := range strings.Fields(chunk) {
			if w != "word" {
				t.Fatalf("chunk %d contains a mid-word cut: %q", i, w)
			}
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 60)

	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestNewSplitterClampsBadParameters(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.ChunkSize != DefaultChunkSize || s.Overlap != 0 {
		t.Fatalf("unexpected clamped params: size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}

	s = NewSplitter(100, 100)
	if s.Overlap != 25 {
		t.Fatalf("expected overlap clamped to size/4, got %d", s.Overlap)
	}
}
