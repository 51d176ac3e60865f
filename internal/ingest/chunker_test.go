package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	c := NewChunker(800, 100)

	chunks := c.Chunk("A short lesson. It fits in one chunk.")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short lesson. It fits in one chunk." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker(800, 100)

	if chunks := c.Chunk(""); chunks != nil {
		t.Errorf("expected no chunks, got %v", chunks)
	}
	if chunks := c.Chunk("   \n\t  "); chunks != nil {
		t.Errorf("expected no chunks for whitespace, got %v", chunks)
	}
}

func TestChunker_RespectsMaxLength(t *testing.T) {
	c := NewChunker(50, 10)

	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, "This is a perfectly normal sentence.")
	}
	chunks := c.Chunk(strings.Join(sentences, " "))

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 50 {
			t.Errorf("chunk %d exceeds max length: %d chars", i, len(chunk))
		}
	}
}

func TestChunker_OversizedSentenceFormsOwnChunk(t *testing.T) {
	c := NewChunker(20, 5)

	long := "This single sentence is far longer than the chunk limit allows."
	chunks := c.Chunk(long)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != long {
		t.Errorf("oversized sentence must stay intact, got %q", chunks[0])
	}
}

func TestChunker_OverlapCarriesTrailingSentence(t *testing.T) {
	c := NewChunker(40, 20)

	text := "One two three four. Five six seven. Eight nine ten."
	chunks := c.Chunk(text)

	want := []string{
		"One two three four. Five six seven.",
		"Five six seven. Eight nine ten.",
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("unexpected chunks:\n got %q\nwant %q", chunks, want)
	}
}

func TestChunker_ZeroOverlapNeverRepeats(t *testing.T) {
	c := NewChunker(40, 0)

	text := "One two three four. Five six seven. Eight nine ten."
	chunks := c.Chunk(text)

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		for _, sentence := range strings.Split(chunk, ". ") {
			sentence = strings.TrimSuffix(sentence, ".")
			if seen[sentence] {
				t.Errorf("sentence repeated across chunks with zero overlap: %q", sentence)
			}
			seen[sentence] = true
		}
	}
}

func TestChunker_Deterministic(t *testing.T) {
	c := NewChunker(60, 25)
	text := "First sentence here. Second sentence follows. Third one too. And a fourth for good measure."

	a := c.Chunk(text)
	b := c.Chunk(text)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("chunking is not deterministic:\n  %q\n  %q", a, b)
	}
}

func TestSplitSentences_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain sentences",
			text: "First one. Second one! Third one?",
			want: []string{"First one.", "Second one!", "Third one?"},
		},
		{
			name: "abbreviation does not split",
			text: "See e.g. the docs. Next sentence.",
			want: []string{"See e.g. the docs.", "Next sentence."},
		},
		{
			name: "honorific does not split",
			text: "Dr. Smith teaches this course. It is good.",
			want: []string{"Dr. Smith teaches this course.", "It is good."},
		},
		{
			name: "decimal does not split",
			text: "Pi is roughly 3.14 in value. Next fact.",
			want: []string{"Pi is roughly 3.14 in value.", "Next fact."},
		},
		{
			name: "whitespace normalized",
			text: "Spread   over\n\nlines. Second.",
			want: []string{"Spread over lines.", "Second."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSentences(%q):\n got %q\nwant %q", tt.text, got, tt.want)
			}
		})
	}
}
