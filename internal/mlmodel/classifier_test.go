package mlmodel

import (
	"math"
	"testing"
)

// testClassifier builds a 4-row embedding with a 2-unit hidden layer and two
// classes. Row 1 pushes toward "visual", row 2 toward "auditory".
func testClassifier() *Classifier {
	return &Classifier{
		Embedding: [][]float64{
			{0, 0},
			{1, 0},
			{0, 1},
			{0.5, 0.5},
		},
		Hidden: DenseLayer{
			Weights: [][]float64{{1, 0}, {0, 1}},
			Bias:    []float64{0, 0},
		},
		Output: DenseLayer{
			Weights: [][]float64{{2, 0}, {0, 2}},
			Bias:    []float64{0, 0},
		},
		Classes: []string{"visual", "auditory"},
	}
}

func TestPredict_ReturnsDistribution(t *testing.T) {
	c := testClassifier()
	probs, err := c.Predict([]int{0, 0, 1})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("expected 2 probabilities, got %d", len(probs))
	}
	sum := probs[0] + probs[1]
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("probabilities sum to %v, expected 1", sum)
	}
	if probs[0] <= probs[1] {
		t.Fatalf("expected visual to win for token 1, got %v", probs)
	}
}

func TestPredict_OutOfRangeTokenActsAsPadding(t *testing.T) {
	c := testClassifier()
	a, err := c.Predict([]int{0, 99})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	b, err := c.Predict([]int{0, 0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("out-of-range token changed output: %v vs %v", a, b)
		}
	}
}

func TestPredict_RejectsEmptySequence(t *testing.T) {
	c := testClassifier()
	if _, err := c.Predict(nil); err == nil {
		t.Fatalf("expected error for empty sequence")
	}
}

func TestArgmax_PicksWinnerAndConfidence(t *testing.T) {
	idx, conf := Argmax([]float64{0.2, 0.7, 0.1})
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if conf != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", conf)
	}
}

func TestValidate_CatchesShapeMismatch(t *testing.T) {
	c := testClassifier()
	c.Classes = []string{"visual"}
	if err := c.validate(); err == nil {
		t.Fatalf("expected validation error for class count mismatch")
	}
}
