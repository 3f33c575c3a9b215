package services

import (
	"bytes"
	"testing"
)

// testWAV builds a mono 16-bit clip at the given sample rate with n samples.
func testWAV(sampleRate uint32, n int) []byte {
	f := wavFormat{
		audioFormat:   1,
		numChannels:   1,
		sampleRate:    sampleRate,
		byteRate:      sampleRate * 2,
		blockAlign:    2,
		bitsPerSample: 16,
	}
	return writeWAV(f, make([]byte, n*2))
}

func TestConcatWAV_JoinsPCMData(t *testing.T) {
	a := testWAV(16000, 100)
	b := testWAV(16000, 50)
	out, err := ConcatWAV([][]byte{a, b})
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	_, data, err := parseWAV(out)
	if err != nil {
		t.Fatalf("parse joined wav: %v", err)
	}
	if len(data) != 300 {
		t.Fatalf("expected 300 bytes of pcm, got %d", len(data))
	}
}

func TestConcatWAV_RejectsFormatMismatch(t *testing.T) {
	a := testWAV(16000, 10)
	b := testWAV(22050, 10)
	if _, err := ConcatWAV([][]byte{a, b}); err == nil {
		t.Fatalf("expected error for mismatched sample rates")
	}
}

func TestConcatWAV_RejectsEmptyInput(t *testing.T) {
	if _, err := ConcatWAV(nil); err == nil {
		t.Fatalf("expected error for no clips")
	}
}

func TestConcatWAV_RejectsNonWAV(t *testing.T) {
	if _, err := ConcatWAV([][]byte{[]byte("not audio")}); err == nil {
		t.Fatalf("expected error for invalid clip")
	}
}

func TestWAVDurationMinutes_FromHeader(t *testing.T) {
	// 16000 samples at 16kHz mono 16-bit is one second
	clip := testWAV(16000, 16000)
	mins, ok := wavDurationMinutes(clip)
	if !ok {
		t.Fatalf("expected ok for valid wav")
	}
	if want := 1.0 / 60.0; mins < want*0.999 || mins > want*1.001 {
		t.Fatalf("expected ~%v minutes, got %v", want, mins)
	}
}

func TestWAVDurationMinutes_RejectsGarbage(t *testing.T) {
	if _, ok := wavDurationMinutes(bytes.Repeat([]byte{0xFF}, 64)); ok {
		t.Fatalf("expected ok=false for garbage input")
	}
}
