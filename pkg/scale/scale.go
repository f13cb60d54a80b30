// Package scale computes the scale factors that keep a rendered network
// readable: a per-layer sigmoid that shrinks wide layers, and a global
// compression factor that fits the whole stack into a depth budget.
//
// Both are pure functions of their inputs.
package scale

import "math"

// Sigmoid maps a layer's width onto a scale factor. Wider layers get
// smaller factors, never below Floor.
//
//	factor = Limit / (1 + exp(Steepness * (size/Normalizer - Midpoint)))
type Sigmoid struct {
	Steepness  float64 `toml:"steepness" json:"steepness" validate:"gt=0"`
	Limit      float64 `toml:"limit" json:"limit" validate:"gt=0"`
	Floor      float64 `toml:"floor" json:"floor" validate:"gte=0"`
	Midpoint   float64 `toml:"midpoint" json:"midpoint"`
	Normalizer float64 `toml:"normalizer" json:"normalizer" validate:"gt=0"`
}

// DefaultSigmoid returns the tuned defaults.
func DefaultSigmoid() Sigmoid {
	return Sigmoid{
		Steepness:  2,
		Limit:      1,
		Floor:      0.1,
		Midpoint:   0.5,
		Normalizer: 9,
	}
}

// Scale returns the factor for a layer of the given width.
func (s Sigmoid) Scale(size float64) float64 {
	norm := s.Normalizer
	if norm == 0 {
		norm = 1
	}
	f := s.Limit / (1 + math.Exp(s.Steepness*(size/norm-s.Midpoint)))
	if math.IsNaN(f) || f < s.Floor {
		return s.Floor
	}
	return f
}

// CompressionFactor returns the uniform factor that fits totalDepth into
// maxBudget: maxBudget/totalDepth when the stack is too deep, 1 otherwise.
// A non-positive budget disables compression.
func CompressionFactor(totalDepth, maxBudget float64) float64 {
	if maxBudget <= 0 || totalDepth <= maxBudget {
		return 1
	}
	return maxBudget / totalDepth
}
