package layout

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerscape/pkg/arch"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/scale"
	"github.com/matzehuels/layerscape/pkg/scene"
)

const eps = 1e-9

func layer(kind string, index int, shape ...int) arch.LayerDescriptor {
	return arch.LayerDescriptor{Kind: kind, Index: index, Name: strings.ToLower(kind), Shape: shape}
}

func mnist() *arch.Architecture {
	return &arch.Architecture{Name: "mnist", Layers: []arch.LayerDescriptor{
		layer(arch.KindConv2D, 0, arch.UnknownDim, 28, 28, 32),
		layer(arch.KindFlatten, 1, arch.UnknownDim, 25088),
		layer(arch.KindDense, 2, arch.UnknownDim, 10),
	}}
}

func distinct(prims []scene.Primitive, axis func(scene.Vec3) float64) int {
	seen := map[float64]bool{}
	for _, p := range prims {
		seen[math.Round(axis(p.Position)*1e6)/1e6] = true
	}
	return len(seen)
}

func TestBuildEmpty(t *testing.T) {
	for _, a := range []*arch.Architecture{nil, {}} {
		s := Build(a)
		if s.Len() != 0 || len(s.Diagnostics) != 0 || s.Compression != 1 {
			t.Errorf("Build(%v) = %+v, want empty scene", a, s)
		}
	}
}

func TestBuildMNIST(t *testing.T) {
	s := Build(mnist())
	if s.Len() != 3 {
		t.Fatalf("got %d nodes, want 3", s.Len())
	}
	if len(s.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", s.Diagnostics)
	}
	for i, n := range s.Nodes {
		if n.Layer.Index != i {
			t.Errorf("node %d has layer index %d", i, n.Layer.Index)
		}
	}

	conv := s.Nodes[0]
	if conv.Category != scene.CategoryVolumetric || conv.Surface != scene.SurfaceSolid {
		t.Errorf("conv classified as %s/%s", conv.Category, conv.Surface)
	}
	if len(conv.Primitives) != 32 {
		t.Fatalf("conv has %d cells, want 32", len(conv.Primitives))
	}
	if cols := distinct(conv.Primitives, func(v scene.Vec3) float64 { return v.X }); cols != 6 {
		t.Errorf("conv grid has %d columns, want 6", cols)
	}
	if rows := distinct(conv.Primitives, func(v scene.Vec3) float64 { return v.Y }); rows != 6 {
		t.Errorf("conv grid has %d rows, want 6", rows)
	}
	if want := scale.DefaultSigmoid().Scale(conv.Bounds.Width()); math.Abs(conv.Scale-want) > eps {
		t.Errorf("conv scale = %v, want sigmoid %v", conv.Scale, want)
	}

	flat := s.Nodes[1]
	if flat.Terminal || flat.Cloud == nil || flat.Cloud.Distribution != scene.DistributionLine {
		t.Fatalf("flatten should be an interior line: %+v", flat.Cloud)
	}
	if len(flat.Primitives) != 50 {
		t.Errorf("flatten shows %d markers, want 50", len(flat.Primitives))
	}
	if flat.Scale != 1 {
		t.Errorf("linear layers are not sigmoid-scaled, got %v", flat.Scale)
	}

	dense := s.Nodes[2]
	if !dense.Terminal || dense.Cloud.Distribution != scene.DistributionCluster {
		t.Fatalf("dense should be the terminal cluster: %+v", dense.Cloud)
	}
	if len(dense.Primitives) != 10 {
		t.Errorf("dense shows %d markers, want 10", len(dense.Primitives))
	}
	if ys := distinct(dense.Primitives, func(v scene.Vec3) float64 { return v.Y }); ys != 1 {
		t.Errorf("terminal row spans %d heights, want 1", ys)
	}
	if dense.Primitives[0].Scale.X >= flat.Primitives[0].Scale.X {
		t.Errorf("terminal markers (%v) should be smaller than interior ones (%v)",
			dense.Primitives[0].Scale.X, flat.Primitives[0].Scale.X)
	}

	if s.Compression != 1 || s.TotalDepth > DefaultConfig().MaxDepth {
		t.Errorf("small stack should not be compressed: f=%v total=%v", s.Compression, s.TotalDepth)
	}
}

func TestPlacementContiguous(t *testing.T) {
	cfg := DefaultConfig()
	s := Build(mnist())

	first, _ := s.Nodes[0].WorldBounds()
	if math.Abs(first.Max.Z-cfg.Origin.Z) > eps {
		t.Errorf("first front face at z=%v, want %v", first.Max.Z, cfg.Origin.Z)
	}
	for i := 1; i < s.Len(); i++ {
		prev, _ := s.Nodes[i-1].WorldBounds()
		cur, _ := s.Nodes[i].WorldBounds()
		if gap := prev.Min.Z - cur.Max.Z; math.Abs(gap-cfg.Gap*s.Compression) > 1e-6 {
			t.Errorf("gap between %d and %d = %v, want %v", i-1, i, gap, cfg.Gap)
		}
		if s.Nodes[i].Position.X != cfg.Origin.X || s.Nodes[i].Position.Y != cfg.Origin.Y {
			t.Errorf("node %d off axis: %v", i, s.Nodes[i].Position)
		}
	}
	if math.Abs(s.PlacedDepth-s.TotalDepth) > 1e-6 {
		t.Errorf("uncompressed placed depth %v != total %v", s.PlacedDepth, s.TotalDepth)
	}
}

func TestCompression(t *testing.T) {
	a := &arch.Architecture{}
	for i := range 40 {
		a.Layers = append(a.Layers, layer(arch.KindConv2D, i, arch.UnknownDim, 8, 8, 4))
	}
	cfg := DefaultConfig()
	s := Build(a, WithConfig(cfg))

	if s.TotalDepth <= cfg.MaxDepth {
		t.Fatalf("test stack too shallow: %v", s.TotalDepth)
	}
	wantF := cfg.MaxDepth / s.TotalDepth
	if math.Abs(s.Compression-wantF) > eps {
		t.Errorf("compression = %v, want %v", s.Compression, wantF)
	}
	if s.PlacedDepth > cfg.MaxDepth+1e-6 {
		t.Errorf("placed depth %v exceeds budget %v", s.PlacedDepth, cfg.MaxDepth)
	}

	base := scale.DefaultSigmoid().Scale(s.Nodes[0].Bounds.Width())
	for i, n := range s.Nodes {
		if math.Abs(n.Scale-base*wantF) > eps {
			t.Errorf("node %d scale = %v, want %v", i, n.Scale, base*wantF)
		}
	}

	uncapped := Build(a, WithMaxDepth(0))
	if uncapped.Compression != 1 {
		t.Errorf("zero budget should disable compression, got %v", uncapped.Compression)
	}
}

func TestFeatureGrid(t *testing.T) {
	cfg := DefaultConfig()
	for _, c := range []int{1, 2, 3, 4, 5, 10, 16, 17, 32, 64, 100} {
		prims := featureGrid(c, 14, cfg, StyleFeatureMap)
		if len(prims) != c {
			t.Errorf("c=%d: %d cells", c, len(prims))
			continue
		}
		dim := int(math.Ceil(math.Sqrt(float64(c))))
		if cols := distinct(prims, func(v scene.Vec3) float64 { return v.X }); cols != dim {
			t.Errorf("c=%d: %d columns, want %d", c, cols, dim)
		}
		for i := range prims {
			for j := i + 1; j < len(prims); j++ {
				if prims[i].Box().Overlaps(prims[j].Box()) {
					t.Fatalf("c=%d: cells %d and %d overlap", c, i, j)
				}
			}
		}

		n := scene.NewVisualNode(arch.LayerDescriptor{})
		n.SetPrimitives(prims)
		center := n.Bounds.Center()
		if math.Abs(center.X) > 1e-9 || (c == dim*dim && math.Abs(center.Y) > 1e-9) {
			t.Errorf("c=%d: grid centered at %v", c, center)
		}
	}
}

func TestLinearCap(t *testing.T) {
	tests := []struct {
		units int
		want  int
	}{
		{0, 0},
		{1, 1},
		{49, 49},
		{50, 50},
		{51, 50},
		{25088, 50},
	}
	for _, tt := range tests {
		a := &arch.Architecture{Layers: []arch.LayerDescriptor{
			layer(arch.KindDense, 0, arch.UnknownDim, tt.units),
			layer(arch.KindDense, 1, arch.UnknownDim, 2),
		}}
		s := Build(a)
		if got := len(s.Nodes[0].Primitives); got != tt.want {
			t.Errorf("units=%d: %d markers, want %d", tt.units, got, tt.want)
		}
	}

	s := Build(&arch.Architecture{Layers: []arch.LayerDescriptor{layer(arch.KindDense, 0, arch.UnknownDim, 80)}}, WithNeuronCap(5))
	if got := len(s.Nodes[0].Primitives); got != 5 {
		t.Errorf("custom cap: %d markers, want 5", got)
	}
}

func TestUnrecognizedKind(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	a := &arch.Architecture{Layers: []arch.LayerDescriptor{
		layer(arch.KindDense, 0, arch.UnknownDim, 4),
		layer("BatchNormalization", 1, arch.UnknownDim, 4),
	}}
	s := Build(a, WithLogger(logger))

	if s.Len() != 2 {
		t.Fatalf("unrecognized layer must still occupy a slot, got %d nodes", s.Len())
	}
	n := s.Nodes[1]
	if n.Category != scene.CategoryUnrecognized || n.HasGeometry() {
		t.Errorf("unrecognized node = %+v", n)
	}
	if n.Terminal {
		t.Error("unrecognized terminal kind must not get terminal treatment")
	}
	if len(s.Diagnostics) != 1 || !errs.Is(s.Diagnostics[0], errs.ErrCodeLookup) {
		t.Errorf("diagnostics = %v", s.Diagnostics)
	}
	if !strings.Contains(buf.String(), "BatchNormalization") {
		t.Errorf("lookup failure not logged: %q", buf.String())
	}

	prev, _ := s.Nodes[0].WorldBounds()
	if gap := prev.Min.Z - n.Position.Z; math.Abs(gap-DefaultConfig().Gap) > 1e-6 {
		t.Errorf("unrecognized slot gap = %v", gap)
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		layer arch.LayerDescriptor
	}{
		{"volumetric rank 2", layer(arch.KindConv2D, 0, arch.UnknownDim, 10)},
		{"volumetric unknown channels", layer(arch.KindMaxPooling2D, 0, arch.UnknownDim, 14, 14, arch.UnknownDim)},
		{"linear no shape", layer(arch.KindDense, 0)},
		{"linear unknown units", layer(arch.KindDropout, 0, arch.UnknownDim, arch.UnknownDim)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Build(&arch.Architecture{Layers: []arch.LayerDescriptor{tt.layer}})
			if s.Len() != 1 {
				t.Fatalf("got %d nodes", s.Len())
			}
			if len(s.Diagnostics) != 1 || !errs.Is(s.Diagnostics[0], errs.ErrCodeShape) {
				t.Errorf("diagnostics = %v", s.Diagnostics)
			}
			if s.Nodes[0].HasGeometry() || s.TotalDepth != 0 {
				t.Errorf("undersized layer contributed geometry: depth %v", s.TotalDepth)
			}
		})
	}
}

func TestZeroChannels(t *testing.T) {
	a := &arch.Architecture{Layers: []arch.LayerDescriptor{
		layer(arch.KindConv2D, 0, arch.UnknownDim, 28, 28, 0),
		layer(arch.KindDense, 1, arch.UnknownDim, 3),
	}}
	s := Build(a)
	if len(s.Diagnostics) != 0 {
		t.Errorf("zero channels is not an error: %v", s.Diagnostics)
	}
	if s.Nodes[0].HasGeometry() || s.Nodes[0].Bounds.Width() != 0 {
		t.Error("zero-channel node should be empty")
	}
	if z := s.Nodes[1].Position.Z; z >= DefaultConfig().Origin.Z {
		t.Errorf("following node not placed behind the empty one: z=%v", z)
	}
}

func TestMaxChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChannels = 9
	s := Build(&arch.Architecture{Layers: []arch.LayerDescriptor{
		layer(arch.KindConv2D, 0, arch.UnknownDim, 4, 4, 100),
	}}, WithConfig(cfg))
	if got := len(s.Nodes[0].Primitives); got != 9 {
		t.Errorf("got %d cells, want 9", got)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	if got := len(r.Kinds()); got != 9 {
		t.Errorf("default registry has %d kinds, want 9", got)
	}
	if _, err := r.Lookup("Nope"); !errs.Is(err, errs.ErrCodeLookup) {
		t.Errorf("Lookup(Nope) = %v", err)
	}

	custom := NewRegistry()
	custom.Register("LSTM", Template{Category: scene.CategoryLinear, Surface: scene.SurfaceNeuron, BaseStyle: "lstm"})
	s := Build(&arch.Architecture{Layers: []arch.LayerDescriptor{layer("LSTM", 0, arch.UnknownDim, 3)}}, WithRegistry(custom))
	if len(s.Diagnostics) != 0 || len(s.Nodes[0].Primitives) != 3 || s.Nodes[0].Primitives[0].Style != "lstm" {
		t.Errorf("custom registry not applied: %+v", s.Nodes[0])
	}
}
