package layout

import (
	"github.com/matzehuels/layerscape/pkg/arch"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/scale"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// Build turns an architecture into a placed scene with one node per layer,
// in input order. Problems with individual layers are recorded in
// Scene.Diagnostics and never abort the build. A nil or empty architecture
// yields an empty scene.
func Build(a *arch.Architecture, opts ...Option) *scene.Scene {
	b := newBuilder(opts...)

	s := &scene.Scene{Compression: 1}
	if a == nil {
		return s
	}
	s.Name = a.Name
	s.Nodes = make([]*scene.VisualNode, 0, len(a.Layers))

	for i, layer := range a.Layers {
		node, err := b.buildNode(layer, a.IsTerminal(i))
		if err != nil {
			s.Diagnostics = append(s.Diagnostics, err)
			b.logger.Warn("layer skipped", "index", layer.Index, "kind", layer.Kind, "code", errs.GetCode(err), "reason", errs.UserMessage(err))
		}
		s.Nodes = append(s.Nodes, node)
	}

	b.place(s)
	b.logger.Debug("layout built", "layers", s.Len(), "total_depth", s.TotalDepth, "placed_depth", s.PlacedDepth, "compression", s.Compression)
	return s
}

// buildNode classifies one layer and generates its local geometry. The
// returned node is always usable; on error it carries no geometry.
func (b *builder) buildNode(layer arch.LayerDescriptor, terminal bool) (*scene.VisualNode, error) {
	node := scene.NewVisualNode(layer)

	tmpl, err := b.registry.Lookup(layer.Kind)
	if err != nil {
		node.Category = scene.CategoryUnrecognized
		return node, err
	}
	node.Category = tmpl.Category
	node.Surface = tmpl.Surface
	node.Terminal = terminal

	switch tmpl.Category {
	case scene.CategoryVolumetric:
		return node, b.buildVolumetric(node, tmpl)
	case scene.CategoryLinear:
		return node, b.buildLinear(node, tmpl)
	}
	return node, nil
}

func (b *builder) buildVolumetric(node *scene.VisualNode, tmpl Template) error {
	shape := node.Layer.Shape
	if shape.Rank() < 4 {
		return errs.New(errs.ErrCodeShape, "layer %d (%s): volumetric layer needs rank 4, got %s", node.Layer.Index, node.Layer.Kind, shape)
	}
	spatial, ok := shape.Dim(1)
	if !ok {
		return errs.New(errs.ErrCodeShape, "layer %d (%s): unknown spatial size in %s", node.Layer.Index, node.Layer.Kind, shape)
	}
	channels, ok := shape.Dim(3)
	if !ok {
		return errs.New(errs.ErrCodeShape, "layer %d (%s): unknown channel count in %s", node.Layer.Index, node.Layer.Kind, shape)
	}
	if b.cfg.MaxChannels > 0 && channels > b.cfg.MaxChannels {
		b.logger.Warn("channel count truncated", "index", node.Layer.Index, "kind", node.Layer.Kind, "channels", channels, "max", b.cfg.MaxChannels)
		channels = b.cfg.MaxChannels
	}

	node.SetPrimitives(featureGrid(channels, spatial, b.cfg, tmpl.BaseStyle))
	node.Scale = b.sigmoid.Scale(node.Bounds.Width())
	return nil
}

func (b *builder) buildLinear(node *scene.VisualNode, tmpl Template) error {
	shape := node.Layer.Shape
	if shape.Rank() < 2 {
		return errs.New(errs.ErrCodeShape, "layer %d (%s): linear layer needs rank 2, got %s", node.Layer.Index, node.Layer.Kind, shape)
	}
	units, ok := shape.Dim(1)
	if !ok {
		return errs.New(errs.ErrCodeShape, "layer %d (%s): unknown unit count in %s", node.Layer.Index, node.Layer.Kind, shape)
	}
	if b.cfg.NeuronCap > 0 && units > b.cfg.NeuronCap {
		b.logger.Debug("units truncated", "index", node.Layer.Index, "units", units, "shown", b.cfg.NeuronCap)
	}

	node.SetCloud(unitCloud(units, node.Terminal, b.cfg), tmpl.BaseStyle)
	return nil
}

// place stacks the nodes along -Z from the origin, each front face touching
// the previous node's back face plus one gap. When the stack exceeds the
// depth budget every node scale and every gap shrinks by the same factor.
func (b *builder) place(s *scene.Scene) {
	n := len(s.Nodes)
	if n == 0 {
		return
	}

	total := b.cfg.Gap * float64(n-1)
	for _, node := range s.Nodes {
		total += node.Bounds.Depth() * node.Scale
	}
	f := scale.CompressionFactor(total, b.cfg.MaxDepth)

	origin := b.cfg.Origin
	cursor := origin.Z
	for i, node := range s.Nodes {
		node.Scale *= f
		node.Position = scene.V(origin.X, origin.Y, cursor-node.Scale*node.Bounds.Max.Z)
		cursor -= node.Scale * node.Bounds.Depth()
		if i < n-1 {
			cursor -= b.cfg.Gap * f
		}
	}

	s.TotalDepth = total
	s.PlacedDepth = origin.Z - cursor
	s.Compression = f
}
