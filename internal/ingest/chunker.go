package ingest

import (
	"strings"
	"unicode"
)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 100
)

// Chunker splits lesson text into overlapping character-bounded chunks
// along sentence boundaries. Chunking is deterministic: the same input
// always yields the same chunk sequence.
type Chunker struct {
	maxChars int
	overlap  int
}

// NewChunker creates a chunker with the given maximum chunk length and
// overlap budget, both in characters.
func NewChunker(maxChars, overlap int) *Chunker {
	if maxChars <= 0 {
		maxChars = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{maxChars: maxChars, overlap: overlap}
}

// Chunk packs sentences greedily up to maxChars, then starts the next
// chunk with the trailing sentences of the previous one whose combined
// length fits the overlap budget. A single sentence longer than
// maxChars forms its own oversized chunk.
func (c *Chunker) Chunk(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		var current []string
		size := 0

		j := i
		for j < len(sentences) {
			cost := len(sentences[j])
			if len(current) > 0 {
				cost++ // joining space
			}
			if size+cost > c.maxChars && len(current) > 0 {
				break
			}
			current = append(current, sentences[j])
			size += cost
			j++
		}

		chunks = append(chunks, strings.Join(current, " "))
		if j >= len(sentences) {
			break
		}

		// Walk back over the tail of the finished chunk while it still
		// fits the overlap budget.
		next := j
		overlapSize := 0
		for next > i {
			tail := len(sentences[next-1])
			if overlapSize+tail > c.overlap {
				break
			}
			overlapSize += tail + 1
			next--
		}
		if next <= i {
			next = i + 1
		}
		i = next
	}

	return chunks
}

// splitSentences breaks text into sentence-like units on .!? followed
// by whitespace, skipping boundaries inside abbreviations ("e.g.",
// "Dr.") and decimal numbers.
func splitSentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !sentenceBoundary(runes, i) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		j := i + 1
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		sentence := strings.TrimSpace(string(runes[start:]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

func sentenceBoundary(runes []rune, i int) bool {
	r := runes[i]
	if r != '.' && r != '!' && r != '?' {
		return false
	}
	if i+1 < len(runes) && runes[i+1] != ' ' {
		// Mid-token punctuation: decimals ("3.14"), versions, URLs.
		return false
	}
	if r == '.' && i >= 2 {
		// Dotted abbreviations keep their sentence going: "e.g.", "U.S."
		if runes[i-2] == '.' && runes[i-1] != ' ' {
			return false
		}
		// Honorifics: "Dr.", "Mr."
		if unicode.IsUpper(runes[i-2]) && unicode.IsLower(runes[i-1]) {
			return false
		}
	}
	return true
}
