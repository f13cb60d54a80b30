package layout

import (
	"slices"

	"github.com/matzehuels/layerscape/pkg/arch"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// Base styles assigned to freshly built primitives.
const (
	StyleFeatureMap scene.StyleHandle = "feature-map"
	StyleUnit       scene.StyleHandle = "unit"
)

// Template is the visual recipe for one layer kind.
type Template struct {
	Category  scene.Category
	Surface   scene.Surface
	BaseStyle scene.StyleHandle
}

// Registry maps layer kinds to templates. It is read-only during a build.
type Registry struct {
	templates map[string]Template
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// Register adds or replaces the template for kind.
func (r *Registry) Register(kind string, t Template) {
	r.templates[kind] = t
}

// Lookup returns the template for kind, or a LOOKUP_ERROR if none is
// registered.
func (r *Registry) Lookup(kind string) (Template, error) {
	if r != nil {
		if t, ok := r.templates[kind]; ok {
			return t, nil
		}
	}
	return Template{}, errs.New(errs.ErrCodeLookup, "no template for layer kind %q", kind)
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.templates))
	for k := range r.templates {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

var (
	volumetric = Template{Category: scene.CategoryVolumetric, Surface: scene.SurfaceSolid, BaseStyle: StyleFeatureMap}
	linear     = Template{Category: scene.CategoryLinear, Surface: scene.SurfaceNeuron, BaseStyle: StyleUnit}
)

// DefaultRegistry returns a registry with every kind the model service
// reports.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range []string{
		arch.KindConv2D,
		arch.KindMaxPooling2D,
		arch.KindConcatenate,
		arch.KindUpSampling2D,
		arch.KindReshape,
		arch.KindInputLayer,
	} {
		r.Register(k, volumetric)
	}
	for _, k := range []string{arch.KindDense, arch.KindDropout, arch.KindFlatten} {
		r.Register(k, linear)
	}
	return r
}
