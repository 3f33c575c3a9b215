package services

import (
  "sync"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/utils"
)

// CostRates holds the unit prices used for generation cost telemetry.
// Dollar figures, per the provider's published pricing.
type CostRates struct {
  InputPerMTokens  float64
  OutputPerMTokens float64
  TTSPerMChars     float64
  STTPerMinute     float64
}

func LoadCostRates(log *logger.Logger) CostRates {
  return CostRates{
    InputPerMTokens:  utils.GetEnvAsFloat("COST_INPUT_PER_M_TOKENS", 1.10, log),
    OutputPerMTokens: utils.GetEnvAsFloat("COST_OUTPUT_PER_M_TOKENS", 4.40, log),
    TTSPerMChars:     utils.GetEnvAsFloat("COST_TTS_PER_M_CHARS", 15.0, log),
    STTPerMinute:     utils.GetEnvAsFloat("COST_STT_PER_MINUTE", 0.006, log),
  }
}

// GenerationCost accumulates usage across the concurrent generation branches.
// Safe for use from multiple goroutines.
type GenerationCost struct {
  mu           sync.Mutex
  inputTokens  int
  outputTokens int
  ttsChars     int
  sttMinutes   float64
}

func (g *GenerationCost) AddTokens(u TokenUsage) {
  g.mu.Lock()
  g.inputTokens += u.InputTokens
  g.outputTokens += u.OutputTokens
  g.mu.Unlock()
}

func (g *GenerationCost) AddTTSChars(n int) {
  g.mu.Lock()
  g.ttsChars += n
  g.mu.Unlock()
}

func (g *GenerationCost) AddSTTMinutes(m float64) {
  g.mu.Lock()
  g.sttMinutes += m
  g.mu.Unlock()
}

// Total returns the dollar cost of everything accumulated so far.
func (g *GenerationCost) Total(r CostRates) float64 {
  g.mu.Lock()
  defer g.mu.Unlock()
  cost := float64(g.inputTokens) / 1_000_000 * r.InputPerMTokens
  cost += float64(g.outputTokens) / 1_000_000 * r.OutputPerMTokens
  cost += float64(g.ttsChars) / 1_000_000 * r.TTSPerMChars
  cost += g.sttMinutes * r.STTPerMinute
  return cost
}

// Report logs the cost breakdown. Telemetry only: callers never branch on it.
func (g *GenerationCost) Report(log *logger.Logger, r CostRates, moduleName string) {
  g.mu.Lock()
  in, out, chars, mins := g.inputTokens, g.outputTokens, g.ttsChars, g.sttMinutes
  g.mu.Unlock()
  log.Info("module generation cost",
    "module", moduleName,
    "input_tokens", in,
    "output_tokens", out,
    "tts_chars", chars,
    "stt_minutes", mins,
    "total_dollars", g.Total(r),
  )
}
