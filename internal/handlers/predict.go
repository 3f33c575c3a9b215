package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/services"
)

type PredictHandler struct {
  log         *logger.Logger
  predictor   services.LearningStyleService
  answerCount int
}

func NewPredictHandler(baseLog *logger.Logger, predictor services.LearningStyleService, answerCount int) *PredictHandler {
  return &PredictHandler{
    log:         baseLog.With("handler", "PredictHandler"),
    predictor:   predictor,
    answerCount: answerCount,
  }
}

// Predict classifies the learning-style inventory answers and returns both
// the per-answer predictions and the aggregated style percentages.
func (ph *PredictHandler) Predict(c *gin.Context) {
  var req struct {
    Answers []struct {
      Answer string `json:"answer"`
    } `json:"answers"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if len(req.Answers) != ph.answerCount {
    c.JSON(http.StatusBadRequest, gin.H{"error": "wrong number of answers"})
    return
  }

  answers := make([]string, len(req.Answers))
  for i, a := range req.Answers {
    answers[i] = a.Answer
  }

  preds, err := ph.predictor.PredictLearningStyles(answers)
  if err != nil {
    respondError(c, err)
    return
  }
  percentages, err := ph.predictor.AggregateStylePercentages(preds)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"predictions": preds, "percentages": percentages})
}
