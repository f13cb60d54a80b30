package scene

import (
	"github.com/matzehuels/layerscape/pkg/arch"
)

// StyleHandle names a material/appearance. The engine treats it as opaque;
// only the renderer knows what a handle looks like.
type StyleHandle string

// Primitive is one rendered element of a node: a feature-map cell or a
// unit marker. Position is relative to the owning node; the primitive
// occupies Position ± Scale/2.
type Primitive struct {
	Position Vec3        `json:"position" bson:"position"`
	Scale    Vec3        `json:"scale" bson:"scale"`
	Style    StyleHandle `json:"style" bson:"style"`
}

// Box returns the primitive's local bounding box.
func (p Primitive) Box() AABB { return Box(p.Position, p.Scale) }

// Category is the visual treatment a layer kind maps to.
type Category string

const (
	CategoryVolumetric   Category = "volumetric"
	CategoryLinear       Category = "linear"
	CategoryUnrecognized Category = "unrecognized"
)

// Surface selects which highlight style a node takes on hover.
type Surface string

const (
	SurfaceSolid  Surface = "solid"
	SurfaceNeuron Surface = "neuron"
	SurfaceNone   Surface = ""
)

// =============================================================================
// InstanceCloud
// =============================================================================

// Distribution is how an instance cloud lays out its markers.
type Distribution string

const (
	// DistributionLine stacks markers vertically.
	DistributionLine Distribution = "line"
	// DistributionCluster spreads markers in a horizontal row.
	DistributionCluster Distribution = "cluster"
)

// InstanceCloud describes Count identical markers. It is turned into static
// primitives once, when the node is built.
type InstanceCloud struct {
	Count        int          `json:"count" bson:"count"`
	Distribution Distribution `json:"distribution" bson:"distribution"`
	Spacing      float64      `json:"spacing" bson:"spacing"`
	UnitScale    float64      `json:"unit_scale" bson:"unit_scale"`
	Offset       Vec3         `json:"offset" bson:"offset"`
}

// Materialize returns the cloud's markers, centered on Offset along the
// distribution axis. A non-positive Count yields no primitives.
func (c InstanceCloud) Materialize(style StyleHandle) []Primitive {
	if c.Count <= 0 {
		return nil
	}
	prims := make([]Primitive, c.Count)
	mid := float64(c.Count-1) / 2
	for i := range prims {
		step := (float64(i) - mid) * c.Spacing
		pos := c.Offset
		if c.Distribution == DistributionCluster {
			pos.X += step
		} else {
			pos.Y += step
		}
		prims[i] = Primitive{Position: pos, Scale: Uniform(c.UnitScale), Style: style}
	}
	return prims
}

// =============================================================================
// Interaction state
// =============================================================================

// Phase is a node's position in the hover/activate state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseHovered   Phase = "hovered"
	PhaseActivated Phase = "activated"
)

// InteractionState is the per-node hover bookkeeping. Snapshot holds the
// primitive styles recorded on hover entry, in primitive order.
type InteractionState struct {
	Hovered   bool          `json:"hovered" bson:"hovered"`
	Activated bool          `json:"activated" bson:"activated"`
	Snapshot  []StyleHandle `json:"-" bson:"-"`
}

// Phase reports the current phase. A hovered node is reported as hovered
// even if it was activated earlier.
func (s InteractionState) Phase() Phase {
	switch {
	case s.Hovered:
		return PhaseHovered
	case s.Activated:
		return PhaseActivated
	default:
		return PhaseIdle
	}
}

// =============================================================================
// VisualNode
// =============================================================================

// VisualNode is the placed visual representation of one layer.
//
// Geometry (Primitives, Children, Bounds, Position, Scale) is written by the
// layout engine only; afterwards only primitive styles and Interaction
// change.
type VisualNode struct {
	Layer       arch.LayerDescriptor
	Category    Category
	Surface     Surface
	Terminal    bool
	Primitives  []Primitive
	Cloud       *InstanceCloud
	Children    []*VisualNode
	Bounds      AABB
	Position    Vec3
	Scale       float64
	Interaction InteractionState
}

// NewVisualNode returns an empty node for layer with unit scale.
func NewVisualNode(layer arch.LayerDescriptor) *VisualNode {
	return &VisualNode{Layer: layer, Scale: 1}
}

// SetPrimitives replaces the node's primitives and recomputes Bounds.
func (n *VisualNode) SetPrimitives(prims []Primitive) {
	n.Primitives = prims
	n.Bounds = ComputeBounds(n)
}

// SetCloud materializes cloud with style and installs the resulting
// primitives.
func (n *VisualNode) SetCloud(cloud InstanceCloud, style StyleHandle) {
	n.Cloud = &cloud
	n.SetPrimitives(cloud.Materialize(style))
}

// AddChild attaches a child node and recomputes Bounds.
func (n *VisualNode) AddChild(child *VisualNode) {
	n.Children = append(n.Children, child)
	n.Bounds = ComputeBounds(n)
}

// HasGeometry reports whether the node or any descendant has primitives.
func (n *VisualNode) HasGeometry() bool {
	if n == nil {
		return false
	}
	if len(n.Primitives) > 0 {
		return true
	}
	for _, c := range n.Children {
		if c.HasGeometry() {
			return true
		}
	}
	return false
}

// WorldBounds returns Bounds in scene space, which doubles as the node's
// hit volume. ok is false when the node has no geometry to hit.
func (n *VisualNode) WorldBounds() (AABB, bool) {
	if !n.HasGeometry() {
		return AABB{}, false
	}
	return n.Bounds.Transform(n.Position, n.Scale), true
}

// Styles returns the current style of every primitive, in order.
func (n *VisualNode) Styles() []StyleHandle {
	styles := make([]StyleHandle, len(n.Primitives))
	for i, p := range n.Primitives {
		styles[i] = p.Style
	}
	return styles
}

// =============================================================================
// Scene
// =============================================================================

// Scene is the output of one layout pass: one node per layer, in input
// order, plus placement statistics and per-layer diagnostics.
type Scene struct {
	Name  string
	Nodes []*VisualNode

	// TotalDepth is the uncompressed stack depth including gaps.
	TotalDepth float64
	// PlacedDepth is the depth actually occupied after compression.
	PlacedDepth float64
	// Compression is the factor applied to every scale and gap.
	Compression float64

	Diagnostics []error
}

// Len returns the number of nodes.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Nodes)
}

// Node returns the node at position i, or nil when out of range.
func (s *Scene) Node(i int) *VisualNode {
	if s == nil || i < 0 || i >= len(s.Nodes) {
		return nil
	}
	return s.Nodes[i]
}

// NodeByIndex returns the node whose layer has descriptor index idx.
func (s *Scene) NodeByIndex(idx int) *VisualNode {
	if s == nil {
		return nil
	}
	for _, n := range s.Nodes {
		if n.Layer.Index == idx {
			return n
		}
	}
	return nil
}

// Bounds returns the union of every node's world bounds. A scene with no
// geometry reports the zero box.
func (s *Scene) Bounds() AABB {
	var (
		out   AABB
		found bool
	)
	for _, n := range s.Nodes {
		wb, ok := n.WorldBounds()
		if !ok {
			continue
		}
		if !found {
			out, found = wb, true
			continue
		}
		out = out.Union(wb)
	}
	return out
}

// Teardown drops every node so nothing from this scene stays reachable
// through it.
func (s *Scene) Teardown() {
	if s == nil {
		return
	}
	for i := range s.Nodes {
		s.Nodes[i] = nil
	}
	s.Nodes = nil
	s.Diagnostics = nil
}
