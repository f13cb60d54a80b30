// Package scene holds the placed, bounded visual representation of an
// architecture.
//
// A [Scene] owns one [VisualNode] per layer. Each node carries its
// [Primitive] elements (feature-map cells or unit markers) in local space,
// the local [AABB] enclosing them, and the Position/Scale that put it in
// scene space. Nodes may have children; [ComputeBounds] folds children in
// through their own transforms.
//
// Nodes are plain data. The layout engine writes geometry once; the
// interaction controller only swaps primitive styles and updates the
// node's [InteractionState].
//
// [Export] turns a scene into a [Document] for JSON output or persistence.
package scene
