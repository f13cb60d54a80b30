package scene

// ComputeBounds returns the box enclosing every primitive of node and,
// recursively, every child's bounds mapped through the child's position and
// scale. The result is relative to node's own origin. A node with nothing to
// enclose, or a nil node, yields the zero box.
func ComputeBounds(node *VisualNode) AABB {
	if node == nil {
		return AABB{}
	}

	var (
		out   AABB
		found bool
	)
	add := func(b AABB) {
		if !found {
			out, found = b, true
			return
		}
		out = out.Union(b)
	}

	for _, p := range node.Primitives {
		add(p.Box())
	}
	for _, child := range node.Children {
		if !child.HasGeometry() {
			continue
		}
		add(ComputeBounds(child).Transform(child.Position, child.Scale))
	}
	return out
}
