package arch

import (
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/layerscape/pkg/errors"
)

const mnistJSON = `[
  {"class_name": "Conv2D", "index": 0, "name": "conv2d", "output_shape": [null, 28, 28, 32], "parameters": 320, "activation": "relu"},
  {"class_name": "Flatten", "index": 1, "name": "flatten", "output_shape": [null, 25088], "parameters": 0, "activation": null},
  {"class_name": "Dense", "index": 2, "name": "dense", "output_shape": [null, 10], "parameters": 250890, "activation": "softmax"}
]`

func TestShapeDim(t *testing.T) {
	s := Shape{UnknownDim, 28, 28, 32}

	if _, ok := s.Dim(0); ok {
		t.Error("unknown dimension should not be ok")
	}
	if d, ok := s.Dim(3); !ok || d != 32 {
		t.Errorf("Dim(3) = %d, %v, want 32, true", d, ok)
	}
	if _, ok := s.Dim(4); ok {
		t.Error("out of range dimension should not be ok")
	}
	if _, ok := Shape(nil).Dim(0); ok {
		t.Error("nil shape should have no dimensions")
	}
}

func TestShapeString(t *testing.T) {
	tests := []struct {
		shape Shape
		want  string
	}{
		{nil, "[]"},
		{Shape{UnknownDim, 10}, "[?, 10]"},
		{Shape{1, 28, 28, 32}, "[1, 28, 28, 32]"},
	}
	for _, tt := range tests {
		if got := tt.shape.String(); got != tt.want {
			t.Errorf("Shape(%v).String() = %q, want %q", []int(tt.shape), got, tt.want)
		}
	}
}

func TestDecodeJSONArray(t *testing.T) {
	a, err := DecodeJSON([]byte(mnistJSON))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}

	conv := a.Layers[0]
	if conv.Kind != KindConv2D || conv.Name != "conv2d" || conv.ParamCount != 320 {
		t.Errorf("unexpected conv layer: %+v", conv)
	}
	if conv.Shape[0] != UnknownDim {
		t.Errorf("null batch dim should decode to UnknownDim, got %d", conv.Shape[0])
	}
	if conv.ActivationName() != "relu" {
		t.Errorf("activation = %q, want relu", conv.ActivationName())
	}
	if a.Layers[1].HasActivation() {
		t.Error("null activation should be absent")
	}
	if !a.IsTerminal(2) || a.IsTerminal(1) {
		t.Error("IsTerminal should only hold for the last layer")
	}
	if got := a.TotalParams(); got != 320+250890 {
		t.Errorf("TotalParams = %d", got)
	}
}

func TestDecodeWrapped(t *testing.T) {
	data := `{"name": "mnist", "layers": ` + mnistJSON + `}`
	a, err := Decode([]byte(data), FormatAuto)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.Name != "mnist" || a.Len() != 3 {
		t.Errorf("got %s", a)
	}
}

func TestDecodeAliases(t *testing.T) {
	data := `[{"kind": "Dense", "index": 4, "shape": [null, 64], "param_count": 100, "activation": ""}]`
	a, err := DecodeJSON([]byte(data))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	l := a.Layers[0]
	if l.Kind != KindDense || l.Index != 4 || l.ParamCount != 100 {
		t.Errorf("aliases not applied: %+v", l)
	}
	if l.Shape.String() != "[?, 64]" {
		t.Errorf("shape = %s", l.Shape)
	}
	if l.HasActivation() {
		t.Error("empty activation string should be absent")
	}
}

func TestDecodeYAML(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "list",
			data: `
# two layers
- class_name: InputLayer
  index: 0
  output_shape: [null, 28, 28, 1]
- class_name: Dense
  index: 1
  output_shape: [null, 10]
  activation: softmax
`,
		},
		{
			name: "wrapped",
			data: `---
name: tiny
layers:
  - class_name: InputLayer
    index: 0
    output_shape: [null, 28, 28, 1]
  - kind: Dense
    index: 1
    shape: [null, 10]
    activation: softmax
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode([]byte(tt.data), FormatAuto)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if a.Len() != 2 {
				t.Fatalf("Len = %d, want 2", a.Len())
			}
			if a.Layers[0].Shape.String() != "[?, 28, 28, 1]" {
				t.Errorf("shape = %s", a.Layers[0].Shape)
			}
			if a.Layers[1].Kind != KindDense || a.Layers[1].ActivationName() != "softmax" {
				t.Errorf("layer 1 = %+v", a.Layers[1])
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty payload", "   "},
		{"empty list", "[]"},
		{"missing layers", `{"name": "x"}`},
		{"malformed", `[{"class_name": "Dense", "index": 0,`},
		{"missing kind", `[{"index": 0, "output_shape": [null, 10]}]`},
		{"missing index", `[{"class_name": "Dense", "output_shape": [null, 10]}]`},
		{"negative index", `[{"class_name": "Dense", "index": -1}]`},
		{"duplicate index", `[{"class_name": "Dense", "index": 0}, {"class_name": "Dense", "index": 0}]`},
		{"decreasing index", `[{"class_name": "Dense", "index": 3}, {"class_name": "Dense", "index": 1}]`},
		{"rank too high", `[{"class_name": "Conv2D", "index": 0, "output_shape": [1, 2, 3, 4, 5]}]`},
		{"negative params", `[{"class_name": "Dense", "index": 0, "parameters": -5}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode([]byte(tt.data), FormatAuto)
			if err == nil {
				t.Fatalf("expected error, got %s", a)
			}
			if a != nil {
				t.Error("no partial architecture should be returned")
			}
			if !errs.Is(err, errs.ErrCodeParse) {
				t.Errorf("expected PARSE_ERROR, got %v", err)
			}
		})
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("[]"), Format("xml"))
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); !errs.Is(err, errs.ErrCodeParse) {
		t.Errorf("nil architecture: %v", err)
	}
	ok := &Architecture{Layers: []LayerDescriptor{
		{Kind: KindDense, Index: 0},
		{Kind: KindDense, Index: 5},
	}}
	if err := Validate(ok); err != nil {
		t.Errorf("gapped but increasing indices should be valid: %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mnist.json")
	if err := os.WriteFile(path, []byte(mnistJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if a.Name != "mnist" {
		t.Errorf("Name = %q, want mnist", a.Name)
	}
	if a.Source != path {
		t.Errorf("Source = %q", a.Source)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing file: expected NOT_FOUND, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	a, err := DecodeJSON([]byte(mnistJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode(data, FormatAuto)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if b.Layers[0].Shape.String() != a.Layers[0].Shape.String() {
		t.Errorf("shape changed: %s vs %s", b.Layers[0].Shape, a.Layers[0].Shape)
	}
}
