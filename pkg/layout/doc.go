// Package layout turns an architecture into a placed 3D scene.
//
// # Overview
//
// [Build] produces one [scene.VisualNode] per layer, in input order. Each
// layer kind is classified through a [Registry] of templates:
//
//   - Volumetric kinds (Conv2D, MaxPooling2D, Concatenate, UpSampling2D,
//     Reshape, InputLayer) become a grid of feature-map cells, one per
//     channel, in ceil(sqrt(channels)) columns centered on the node origin.
//     Cell width and spacing follow the layer's spatial size.
//   - Linear kinds (Dense, Dropout, Flatten) become a cloud of unit markers,
//     capped at [Config].NeuronCap. Interior layers show a vertical line;
//     the last layer shows a smaller horizontal row.
//   - Unknown kinds keep their slot in the stack with no geometry and a
//     LOOKUP_ERROR diagnostic.
//
// Volumetric nodes are then shrunk by a sigmoid of their width
// ([scale.Sigmoid]), so wide feature maps do not dwarf the rest.
//
// # Placement
//
// Nodes are stacked along -Z starting at [Config].Origin, each front face
// touching the previous node's back face plus [Config].Gap. If the stack
// would be deeper than [Config].MaxDepth, every node scale and every gap is
// multiplied by the same [scale.CompressionFactor], so the placed depth
// never exceeds the budget.
//
//	s := layout.Build(a,
//	    layout.WithLogger(logger),
//	    layout.WithMaxDepth(40),
//	)
//
// # Options
//
//   - [WithConfig]: replace every geometry constant (default [DefaultConfig])
//   - [WithSigmoid]: per-layer scale curve (default [scale.DefaultSigmoid])
//   - [WithRegistry]: kind-to-template table (default [DefaultRegistry])
//   - [WithLogger]: receive warnings for skipped or truncated layers
//   - [WithMaxDepth], [WithNeuronCap], [WithOrigin]: single overrides
//
// [scale.Sigmoid]: github.com/matzehuels/layerscape/pkg/scale
// [scale.CompressionFactor]: github.com/matzehuels/layerscape/pkg/scale
// [scale.DefaultSigmoid]: github.com/matzehuels/layerscape/pkg/scale
package layout
