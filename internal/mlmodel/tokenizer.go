package mlmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Tokenizer mirrors a Keras text tokenizer exported as JSON: a word→index
// vocabulary plus a reserved out-of-vocabulary index. Index 0 is padding and
// never assigned to a word.
type Tokenizer struct {
	WordIndex map[string]int `json:"word_index"`
	OOVIndex  int            `json:"oov_index"`
}

func LoadTokenizer(path string) (*Tokenizer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer: %w", err)
	}
	var t Tokenizer
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse tokenizer: %w", err)
	}
	if len(t.WordIndex) == 0 {
		return nil, fmt.Errorf("tokenizer has empty word index")
	}
	if t.OOVIndex == 0 {
		t.OOVIndex = 1
	}
	return &t, nil
}

// TextsToSequences maps whitespace-separated words to vocabulary indices.
// Unknown words map to the OOV index.
func (t *Tokenizer) TextsToSequences(texts []string) [][]int {
	out := make([][]int, len(texts))
	for i, text := range texts {
		words := strings.Fields(text)
		seq := make([]int, 0, len(words))
		for _, w := range words {
			idx, ok := t.WordIndex[w]
			if !ok {
				idx = t.OOVIndex
			}
			seq = append(seq, idx)
		}
		out[i] = seq
	}
	return out
}

// PadSequences left-pads with zeros to maxLen. Sequences longer than maxLen
// are truncated from the front so the most recent maxLen tokens survive,
// matching the exported model's training-time encoding.
func PadSequences(seqs [][]int, maxLen int) [][]int {
	out := make([][]int, len(seqs))
	for i, seq := range seqs {
		padded := make([]int, maxLen)
		if len(seq) > maxLen {
			seq = seq[len(seq)-maxLen:]
		}
		copy(padded[maxLen-len(seq):], seq)
		out[i] = padded
	}
	return out
}
