package services

import (
  "fmt"
  "regexp"
  "strings"

  "github.com/studykite/studykite-backend/internal/apierr"
  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/mlmodel"
)

const sequenceLength = 48

var nonLetterRe = regexp.MustCompile(`[^a-zA-Z ]`)

type StylePrediction struct {
  Style      string  `json:"style"`
  Confidence float64 `json:"confidence"`
}

type LearningStyleService interface {
  PredictLearningStyles(answers []string) ([]StylePrediction, error)
  AggregateStylePercentages(preds []StylePrediction) (map[string]float64, error)
}

type learningStyleService struct {
  log        *logger.Logger
  tokenizer  *mlmodel.Tokenizer
  classifier *mlmodel.Classifier
}

func NewLearningStyleService(baseLog *logger.Logger, tokenizer *mlmodel.Tokenizer, classifier *mlmodel.Classifier) LearningStyleService {
  return &learningStyleService{
    log:        baseLog.With("service", "LearningStyleService"),
    tokenizer:  tokenizer,
    classifier: classifier,
  }
}

// Clean normalizes free-text answers the same way the training data was
// prepared: letters and spaces only, lowercased.
func Clean(s string) string {
  return strings.ToLower(nonLetterRe.ReplaceAllString(s, ""))
}

func (lss *learningStyleService) PredictLearningStyles(answers []string) ([]StylePrediction, error) {
  if len(answers) == 0 {
    return nil, apierr.Validation("no answers to predict from")
  }

  cleaned := make([]string, len(answers))
  for i, a := range answers {
    cleaned[i] = Clean(a)
  }
  seqs := lss.tokenizer.TextsToSequences(cleaned)
  padded := mlmodel.PadSequences(seqs, sequenceLength)

  preds := make([]StylePrediction, 0, len(padded))
  for i, seq := range padded {
    probs, err := lss.classifier.Predict(seq)
    if err != nil {
      return nil, fmt.Errorf("predict answer %d: %w", i, err)
    }
    idx, conf := mlmodel.Argmax(probs)
    preds = append(preds, StylePrediction{
      Style:      lss.classifier.Classes[idx],
      Confidence: conf,
    })
  }
  return preds, nil
}

// AggregateStylePercentages sums per-answer confidences by style and
// normalizes to percentages. The returned values sum to 100.
func (lss *learningStyleService) AggregateStylePercentages(preds []StylePrediction) (map[string]float64, error) {
  if len(preds) == 0 {
    return nil, apierr.Validation("no predictions to aggregate")
  }
  sums := make(map[string]float64, len(lss.classifier.Classes))
  total := 0.0
  for _, p := range preds {
    sums[p.Style] += p.Confidence
    total += p.Confidence
  }
  if total == 0 {
    return nil, fmt.Errorf("zero total confidence")
  }
  out := make(map[string]float64, len(sums))
  for style, sum := range sums {
    out[style] = sum / total * 100
  }
  return out, nil
}
