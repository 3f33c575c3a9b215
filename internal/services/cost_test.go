package services

import (
	"math"
	"testing"
)

func testRates() CostRates {
	return CostRates{
		InputPerMTokens:  1.10,
		OutputPerMTokens: 4.40,
		TTSPerMChars:     15.0,
		STTPerMinute:     0.006,
	}
}

func TestGenerationCost_TokenMath(t *testing.T) {
	cost := &GenerationCost{}
	cost.AddTokens(TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000})
	got := cost.Total(testRates())
	want := 1.10 + 2.20
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestGenerationCost_AccumulatesAcrossCalls(t *testing.T) {
	cost := &GenerationCost{}
	cost.AddTokens(TokenUsage{InputTokens: 100, OutputTokens: 200})
	cost.AddTokens(TokenUsage{InputTokens: 300, OutputTokens: 400})
	cost.AddTTSChars(2_000_000)
	cost.AddSTTMinutes(10)
	got := cost.Total(testRates())
	want := 400.0/1_000_000*1.10 + 600.0/1_000_000*4.40 + 2.0*15.0 + 10*0.006
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestGenerationCost_EmptyIsZero(t *testing.T) {
	cost := &GenerationCost{}
	if got := cost.Total(testRates()); got != 0 {
		t.Fatalf("expected 0 cost, got %v", got)
	}
}
