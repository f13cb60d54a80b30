package arch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	errs "github.com/matzehuels/layerscape/pkg/errors"
)

// Format identifies the encoding of an architecture payload.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MaxRank is the highest shape rank the model service reports.
const MaxRank = 4

// wireLayer mirrors one payload entry before normalization. Pointers
// distinguish "absent" from zero.
type wireLayer struct {
	ClassName   string  `json:"class_name" yaml:"class_name" validate:"required_without=Kind"`
	Kind        string  `json:"kind" yaml:"kind"`
	Index       *int    `json:"index" yaml:"index" validate:"required,min=0"`
	Name        string  `json:"name" yaml:"name"`
	OutputShape []*int  `json:"output_shape" yaml:"output_shape" validate:"max=4"`
	Shape       []*int  `json:"shape" yaml:"shape" validate:"max=4"`
	Parameters  *int    `json:"parameters" yaml:"parameters" validate:"omitempty,min=0"`
	ParamCount  *int    `json:"param_count" yaml:"param_count" validate:"omitempty,min=0"`
	Activation  *string `json:"activation" yaml:"activation"`
}

type wireArchitecture struct {
	Name   string       `json:"name" yaml:"name"`
	Source string       `json:"source" yaml:"source"`
	Layers *[]wireLayer `json:"layers" yaml:"layers"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() { validate = validator.New() })
	return validate
}

// Decode parses an architecture payload. With FormatAuto the encoding is
// sniffed: payloads starting with '[' or '{' are JSON, anything else YAML.
func Decode(data []byte, format Format) (*Architecture, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errs.New(errs.ErrCodeParse, "empty architecture payload")
	}
	if format == FormatAuto {
		format = sniff(trimmed)
	}

	var (
		w   wireArchitecture
		err error
	)
	switch format {
	case FormatJSON:
		w, err = decodeJSON(trimmed)
	case FormatYAML:
		w, err = decodeYAML(trimmed)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported architecture format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return normalize(w)
}

// DecodeJSON is shorthand for Decode(data, FormatJSON).
func DecodeJSON(data []byte) (*Architecture, error) { return Decode(data, FormatJSON) }

// DecodeYAML is shorthand for Decode(data, FormatYAML).
func DecodeYAML(data []byte) (*Architecture, error) { return Decode(data, FormatYAML) }

// Read decodes an architecture from r.
func Read(r io.Reader, format Format) (*Architecture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "read architecture")
	}
	return Decode(data, format)
}

// ReadFile decodes an architecture file, choosing the format from the
// extension (.yaml/.yml are YAML, everything else is sniffed). The
// architecture name defaults to the file's base name.
func ReadFile(path string) (*Architecture, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "architecture file %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeParse, err, "read %s", path)
	}

	format := FormatAuto
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	}

	a, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if a.Source == "" {
		a.Source = path
	}
	return a, nil
}

// Marshal encodes an architecture in its wrapped JSON form.
func Marshal(a *Architecture) ([]byte, error) {
	return json.Marshal(a)
}

func sniff(data []byte) Format {
	switch data[0] {
	case '[', '{':
		return FormatJSON
	default:
		return FormatYAML
	}
}

func decodeJSON(data []byte) (wireArchitecture, error) {
	var w wireArchitecture
	if data[0] == '[' {
		var layers []wireLayer
		if err := json.Unmarshal(data, &layers); err != nil {
			return w, errs.Wrap(errs.ErrCodeParse, err, "decode JSON layer list")
		}
		w.Layers = &layers
		return w, nil
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return w, errs.Wrap(errs.ErrCodeParse, err, "decode JSON architecture")
	}
	return w, nil
}

func decodeYAML(data []byte) (wireArchitecture, error) {
	var w wireArchitecture
	if firstYAMLToken(data) == '-' {
		var layers []wireLayer
		if err := yaml.UnmarshalWithOptions(data, &layers, yaml.Validator(structValidator())); err != nil {
			return w, errs.Wrap(errs.ErrCodeParse, err, "decode YAML layer list")
		}
		w.Layers = &layers
		return w, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &w, yaml.Validator(structValidator())); err != nil {
		return w, errs.Wrap(errs.ErrCodeParse, err, "decode YAML architecture")
	}
	return w, nil
}

// firstYAMLToken returns the first significant byte, skipping comments and
// a leading document marker.
func firstYAMLToken(data []byte) byte {
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' || bytes.Equal(line, []byte("---")) {
			continue
		}
		return line[0]
	}
	return 0
}

func normalize(w wireArchitecture) (*Architecture, error) {
	if w.Layers == nil {
		return nil, errs.New(errs.ErrCodeParse, "architecture has no layers field")
	}
	a := &Architecture{
		Name:   w.Name,
		Source: w.Source,
		Layers: make([]LayerDescriptor, 0, len(*w.Layers)),
	}
	for i, wl := range *w.Layers {
		if err := structValidator().Struct(wl); err != nil {
			return nil, errs.Wrap(errs.ErrCodeParse, err, "layer %d", i)
		}
		a.Layers = append(a.Layers, wl.descriptor())
	}
	if err := Validate(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (wl wireLayer) descriptor() LayerDescriptor {
	d := LayerDescriptor{
		Kind: wl.ClassName,
		Name: wl.Name,
	}
	if d.Kind == "" {
		d.Kind = wl.Kind
	}
	if wl.Index != nil {
		d.Index = *wl.Index
	}
	raw := wl.OutputShape
	if raw == nil {
		raw = wl.Shape
	}
	if raw != nil {
		d.Shape = make(Shape, len(raw))
		for i, p := range raw {
			if p == nil {
				d.Shape[i] = UnknownDim
				continue
			}
			d.Shape[i] = *p
		}
	}
	switch {
	case wl.Parameters != nil:
		d.ParamCount = *wl.Parameters
	case wl.ParamCount != nil:
		d.ParamCount = *wl.ParamCount
	}
	if wl.Activation != nil && *wl.Activation != "" {
		act := *wl.Activation
		d.Activation = &act
	}
	return d
}

// Validate checks the architecture-level invariants: at least one layer,
// non-empty kinds, shape rank within bounds, and strictly increasing indices.
func Validate(a *Architecture) error {
	if a == nil {
		return errs.New(errs.ErrCodeParse, "architecture is absent")
	}
	if len(a.Layers) == 0 {
		return errs.New(errs.ErrCodeParse, "architecture has no layers")
	}
	for i, l := range a.Layers {
		if l.Kind == "" {
			return errs.New(errs.ErrCodeParse, "layer %d has no kind", i)
		}
		if l.Shape.Rank() > MaxRank {
			return errs.New(errs.ErrCodeParse, "layer %d (%s) has rank %d, max %d", i, l.Kind, l.Shape.Rank(), MaxRank)
		}
		if i > 0 && l.Index <= a.Layers[i-1].Index {
			return errs.New(errs.ErrCodeParse, "layer %d index %d does not follow %d", i, l.Index, a.Layers[i-1].Index)
		}
	}
	return nil
}

// String summarizes the architecture for logs.
func (a *Architecture) String() string {
	if a == nil {
		return "<nil architecture>"
	}
	name := a.Name
	if name == "" {
		name = "architecture"
	}
	return fmt.Sprintf("%s (%d layers, %d params)", name, len(a.Layers), a.TotalParams())
}
