package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/studykite/studykite-backend/internal/services"
)

type fakePredictor struct {
	calls int
}

func (f *fakePredictor) PredictLearningStyles(answers []string) ([]services.StylePrediction, error) {
	f.calls++
	preds := make([]services.StylePrediction, len(answers))
	for i := range answers {
		preds[i] = services.StylePrediction{Style: "visual", Confidence: 0.8}
	}
	return preds, nil
}

func (f *fakePredictor) AggregateStylePercentages(preds []services.StylePrediction) (map[string]float64, error) {
	return map[string]float64{"visual": 100.0}, nil
}

func newPredictRouter(p services.LearningStyleService, answerCount int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPredictHandler(newTestLogger(), p, answerCount)
	r := gin.New()
	r.POST("/api/predict-learning-style", h.Predict)
	return r
}

func predictBody(t *testing.T, n int) *bytes.Buffer {
	t.Helper()
	answers := make([]map[string]string, n)
	for i := range answers {
		answers[i] = map[string]string{"answer": fmt.Sprintf("answer %d", i)}
	}
	raw, err := json.Marshal(map[string]any{"answers": answers})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(raw)
}

func TestPredict_HappyPath(t *testing.T) {
	fake := &fakePredictor{}
	r := newPredictRouter(fake, 16)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict-learning-style", predictBody(t, 16))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Predictions []services.StylePrediction `json:"predictions"`
		Percentages map[string]float64         `json:"percentages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Predictions) != 16 {
		t.Fatalf("expected 16 predictions, got %d", len(resp.Predictions))
	}
	if resp.Percentages["visual"] != 100.0 {
		t.Fatalf("expected visual=100, got %v", resp.Percentages)
	}
}

func TestPredict_RejectsWrongAnswerCount(t *testing.T) {
	fake := &fakePredictor{}
	r := newPredictRouter(fake, 16)

	for _, n := range []int{0, 5, 17} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/predict-learning-style", predictBody(t, n))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%d answers: expected 400, got %d", n, rec.Code)
		}
	}
	if fake.calls != 0 {
		t.Fatalf("predictor must not run for rejected requests, got %d calls", fake.calls)
	}
}

func TestPredict_RejectsMalformedBody(t *testing.T) {
	r := newPredictRouter(&fakePredictor{}, 16)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict-learning-style", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
