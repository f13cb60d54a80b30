package scale

import (
	"math"
	"testing"
)

func TestSigmoidNonIncreasing(t *testing.T) {
	s := DefaultSigmoid()
	prev := s.Scale(0)
	for size := 0.25; size <= 200; size += 0.25 {
		got := s.Scale(size)
		if got > prev {
			t.Fatalf("Scale(%v) = %v > Scale(%v) = %v", size, got, size-0.25, prev)
		}
		if got < s.Floor {
			t.Fatalf("Scale(%v) = %v below floor %v", size, got, s.Floor)
		}
		prev = got
	}
}

func TestSigmoidValues(t *testing.T) {
	s := DefaultSigmoid()
	tests := []struct {
		size float64
		want float64
	}{
		{4.5, 0.5},                        // midpoint
		{0, 1 / (1 + math.Exp(-1))},       // narrow layers stay large
		{1000, 0.1},                       // floored
		{math.Inf(1), 0.1},                // floored
		{9, 1 / (1 + math.Exp(1))},        // one normalizer wide
		{1.12, 1 / (1 + math.Exp(-0.751))}, // 28px cell
	}
	for _, tt := range tests {
		got := s.Scale(tt.size)
		if math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("Scale(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestSigmoidZeroNormalizer(t *testing.T) {
	s := DefaultSigmoid()
	s.Normalizer = 0
	if got := s.Scale(0.5); math.IsNaN(got) || got < s.Floor {
		t.Errorf("zero normalizer produced %v", got)
	}
}

func TestCompressionFactor(t *testing.T) {
	tests := []struct {
		name          string
		depth, budget float64
		want          float64
	}{
		{"within budget", 10, 27, 1},
		{"exactly budget", 27, 27, 1},
		{"over budget", 54, 27, 0.5},
		{"zero depth", 0, 27, 1},
		{"no budget", 100, 0, 1},
		{"negative budget", 100, -5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompressionFactor(tt.depth, tt.budget)
			if got != tt.want {
				t.Errorf("CompressionFactor(%v, %v) = %v, want %v", tt.depth, tt.budget, got, tt.want)
			}
			if tt.budget > 0 && tt.depth*got > tt.budget+1e-9 {
				t.Errorf("compressed depth %v exceeds budget %v", tt.depth*got, tt.budget)
			}
		})
	}
}
