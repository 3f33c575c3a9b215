package mlmodel

import (
	"testing"
)

func testTokenizer() *Tokenizer {
	return &Tokenizer{
		WordIndex: map[string]int{
			"i":        2,
			"like":     3,
			"watching": 4,
			"videos":   5,
		},
		OOVIndex: 1,
	}
}

func TestTextsToSequences_MapsKnownWords(t *testing.T) {
	tok := testTokenizer()
	seqs := tok.TextsToSequences([]string{"i like videos"})
	if len(seqs) != 1 {
		t.Fatalf("expected 1 sequence, got %d", len(seqs))
	}
	want := []int{2, 3, 5}
	for i, v := range want {
		if seqs[0][i] != v {
			t.Fatalf("token %d: expected %d got %d", i, v, seqs[0][i])
		}
	}
}

func TestTextsToSequences_UnknownWordsMapToOOV(t *testing.T) {
	tok := testTokenizer()
	seqs := tok.TextsToSequences([]string{"i dislike videos"})
	if seqs[0][1] != tok.OOVIndex {
		t.Fatalf("expected OOV index %d for unknown word, got %d", tok.OOVIndex, seqs[0][1])
	}
}

func TestPadSequences_LeftPadsShortSequences(t *testing.T) {
	out := PadSequences([][]int{{7, 8}}, 5)
	want := []int{0, 0, 0, 7, 8}
	for i, v := range want {
		if out[0][i] != v {
			t.Fatalf("position %d: expected %d got %d", i, v, out[0][i])
		}
	}
}

func TestPadSequences_TruncatesFromFront(t *testing.T) {
	out := PadSequences([][]int{{1, 2, 3, 4, 5, 6}}, 4)
	// the earliest tokens are dropped, the tail survives
	want := []int{3, 4, 5, 6}
	for i, v := range want {
		if out[0][i] != v {
			t.Fatalf("position %d: expected %d got %d", i, v, out[0][i])
		}
	}
}

func TestPadSequences_EmptySequenceIsAllPadding(t *testing.T) {
	out := PadSequences([][]int{{}}, 3)
	for i, v := range out[0] {
		if v != 0 {
			t.Fatalf("position %d: expected padding 0 got %d", i, v)
		}
	}
}
