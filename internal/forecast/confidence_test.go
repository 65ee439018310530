package forecast

import (
	"math"
	"testing"
)

func TestConfidenceBandContainsPrediction(t *testing.T) {
	for _, h := range []int{1, 6, 24, 168} {
		lower, upper, _ := ConfidenceBand(12, h, 55)
		if lower > 55 || upper < 55 {
			t.Fatalf("h=%d: band [%f, %f] must contain 55", h, lower, upper)
		}
		if lower < 0 {
			t.Fatalf("h=%d: lower bound must be non-negative, got %f", h, lower)
		}
	}
}

func TestConfidenceBandSqrtScaling(t *testing.T) {
	// Band width at horizon 48 is exactly sqrt(2) times the width at 24.
	l24, u24, _ := ConfidenceBand(10, 24, 500)
	l48, u48, _ := ConfidenceBand(10, 48, 500)
	w24 := u24 - l24
	w48 := u48 - l48
	if math.Abs(w48-math.Sqrt2*w24) > 1e-9 {
		t.Fatalf("width ratio: want sqrt(2), got %f", w48/w24)
	}
}

func TestConfidenceScoreDegrades(t *testing.T) {
	_, _, s1 := ConfidenceBand(10, 1, 50)
	_, _, s24 := ConfidenceBand(10, 24, 50)
	_, _, s96 := ConfidenceBand(10, 96, 50)
	if !(s1 > s24 && s24 > s96) {
		t.Fatalf("score must degrade with horizon: %f %f %f", s1, s24, s96)
	}
}

func TestConfidenceScoreClamped(t *testing.T) {
	// Near-zero prediction: relative uncertainty explodes, score clamps at 0.
	if _, _, s := ConfidenceBand(10, 24, 0.01); s != 0 {
		t.Fatalf("score must clamp at 0, got %f", s)
	}
	// Zero volatility: full confidence.
	if _, _, s := ConfidenceBand(0, 24, 50); s != 1 {
		t.Fatalf("zero volatility must score 1, got %f", s)
	}
	// Zero prediction with zero volatility still stays in [0,1].
	if _, _, s := ConfidenceBand(0, 24, 0); s < 0 || s > 1 {
		t.Fatalf("score out of range: %f", s)
	}
}

func TestConfidenceLowerClampZero(t *testing.T) {
	lower, _, _ := ConfidenceBand(100, 48, 10)
	if lower != 0 {
		t.Fatalf("lower bound must clamp at 0, got %f", lower)
	}
}
