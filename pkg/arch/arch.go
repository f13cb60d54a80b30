package arch

import (
	"strconv"
	"strings"
)

// Layer kinds reported by the model description service.
const (
	KindConv2D       = "Conv2D"
	KindMaxPooling2D = "MaxPooling2D"
	KindConcatenate  = "Concatenate"
	KindUpSampling2D = "UpSampling2D"
	KindReshape      = "Reshape"
	KindInputLayer   = "InputLayer"
	KindDense        = "Dense"
	KindDropout      = "Dropout"
	KindFlatten      = "Flatten"
)

// UnknownDim marks a dimension the payload reported as null (usually the batch axis).
const UnknownDim = -1

// Shape is a layer's output shape, rank 0 to 4.
type Shape []int

// Dim returns dimension i. ok is false when the shape is too short or the
// dimension is unknown; callers treat that as a zero-size contribution.
func (s Shape) Dim(i int) (int, bool) {
	if i < 0 || i >= len(s) || s[i] < 0 {
		return 0, false
	}
	return s[i], true
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// String formats the shape as "[d0, d1, ...]". Unknown dimensions print as "?".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d < 0 {
			parts[i] = "?"
			continue
		}
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// LayerDescriptor is one architecture entry. It is immutable once parsed.
type LayerDescriptor struct {
	Kind       string  `json:"class_name" yaml:"class_name" bson:"class_name"`
	Index      int     `json:"index" yaml:"index" bson:"index"`
	Name       string  `json:"name" yaml:"name" bson:"name"`
	Shape      Shape   `json:"output_shape" yaml:"output_shape" bson:"output_shape"`
	ParamCount int     `json:"parameters" yaml:"parameters" bson:"parameters"`
	Activation *string `json:"activation" yaml:"activation" bson:"activation,omitempty"`
}

// HasActivation reports whether an activation function name is present.
func (l LayerDescriptor) HasActivation() bool {
	return l.Activation != nil && *l.Activation != ""
}

// ActivationName returns the activation name or "" when absent.
func (l LayerDescriptor) ActivationName() string {
	if l.HasActivation() {
		return *l.Activation
	}
	return ""
}

// Architecture is an ordered list of layers as delivered by one fetch.
// A new fetch supersedes it wholesale.
type Architecture struct {
	Name   string            `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Source string            `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	Layers []LayerDescriptor `json:"layers" yaml:"layers" bson:"layers"`
}

// Len returns the number of layers.
func (a *Architecture) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Layers)
}

// IsTerminal reports whether position i is the last layer in the sequence.
func (a *Architecture) IsTerminal(i int) bool {
	return a != nil && i == len(a.Layers)-1
}

// TotalParams sums ParamCount over all layers.
func (a *Architecture) TotalParams() int {
	if a == nil {
		return 0
	}
	total := 0
	for _, l := range a.Layers {
		total += l.ParamCount
	}
	return total
}

// Activation is a convenience for building descriptors in code and tests.
func Activation(name string) *string { return &name }
