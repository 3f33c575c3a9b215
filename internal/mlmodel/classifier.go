package mlmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

type DenseLayer struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// Classifier is a pre-trained learning-style model exported to JSON:
// embedding lookup → global average pooling → dense ReLU → dense softmax.
// Classes holds the label-encoder ordering so an argmax index maps straight
// back to a style name.
type Classifier struct {
	Embedding [][]float64 `json:"embedding"`
	Hidden    DenseLayer  `json:"hidden"`
	Output    DenseLayer  `json:"output"`
	Classes   []string    `json:"classes"`
}

func LoadClassifier(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier: %w", err)
	}
	var c Classifier
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse classifier: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Classifier) validate() error {
	if len(c.Embedding) == 0 || len(c.Embedding[0]) == 0 {
		return fmt.Errorf("classifier missing embedding matrix")
	}
	if len(c.Hidden.Weights) == 0 || len(c.Output.Weights) == 0 {
		return fmt.Errorf("classifier missing dense layers")
	}
	embDim := len(c.Embedding[0])
	if len(c.Hidden.Weights) != embDim {
		return fmt.Errorf("hidden layer expects %d inputs, embedding dim is %d", len(c.Hidden.Weights), embDim)
	}
	hiddenDim := len(c.Hidden.Weights[0])
	if len(c.Hidden.Bias) != hiddenDim {
		return fmt.Errorf("hidden bias size %d does not match %d units", len(c.Hidden.Bias), hiddenDim)
	}
	if len(c.Output.Weights) != hiddenDim {
		return fmt.Errorf("output layer expects %d inputs, hidden dim is %d", len(c.Output.Weights), hiddenDim)
	}
	classDim := len(c.Output.Weights[0])
	if len(c.Output.Bias) != classDim {
		return fmt.Errorf("output bias size %d does not match %d units", len(c.Output.Bias), classDim)
	}
	if len(c.Classes) != classDim {
		return fmt.Errorf("classifier has %d classes but output layer has %d units", len(c.Classes), classDim)
	}
	return nil
}

// Predict runs one padded token sequence through the network and returns a
// probability distribution over Classes.
func (c *Classifier) Predict(seq []int) ([]float64, error) {
	embDim := len(c.Embedding[0])
	pooled := make([]float64, embDim)
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty token sequence")
	}
	for _, idx := range seq {
		if idx < 0 || idx >= len(c.Embedding) {
			// out-of-range ids contribute the padding row
			idx = 0
		}
		row := c.Embedding[idx]
		for j := 0; j < embDim; j++ {
			pooled[j] += row[j]
		}
	}
	for j := 0; j < embDim; j++ {
		pooled[j] /= float64(len(seq))
	}

	hidden := dense(pooled, c.Hidden)
	for i, v := range hidden {
		if v < 0 {
			hidden[i] = 0
		}
	}

	logits := dense(hidden, c.Output)
	return softmax(logits), nil
}

// Argmax returns the winning class index and its probability.
func Argmax(probs []float64) (int, float64) {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best, probs[best]
}

func dense(in []float64, layer DenseLayer) []float64 {
	out := make([]float64, len(layer.Bias))
	copy(out, layer.Bias)
	for i, v := range in {
		row := layer.Weights[i]
		for j := range out {
			out[j] += v * row[j]
		}
	}
	return out
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
