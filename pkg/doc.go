// Package pkg provides the core libraries for Layerscape neural network
// scene layout.
//
// # Overview
//
// Layerscape turns a neural network's ordered layer list into a 3D scene:
// convolutional layers become grids of feature-map blocks, dense layers
// become rows of unit markers, and the whole model is laid out along the
// -Z axis. The scene can then be inspected layer by layer. The pkg directory
// is organized into four main areas:
//
//  1. [arch], [scale], [layout], [scene] - Domain logic (decoding, sizing, placement)
//  2. [interact], [viewer] - Hover highlighting and layer inspection
//  3. [source], [httputil] - Model description service clients
//  4. [pipeline], [cache], [store], [session], [server] - Orchestration and serving
//
// # Architecture
//
// The typical data flow through Layerscape:
//
//	Model description service / file
//	         ↓
//	    [source] package (fetch payload)
//	         ↓
//	    [arch] package (decode + validate layer descriptors)
//	         ↓
//	    [layout] package (templates, sigmoid sizing, placement)
//	         ↓
//	    [scene] package (visual nodes, bounds, JSON documents)
//	         ↓
//	    [viewer] + [interact] (hover, activate, inspector)
//
// # Quick Start
//
// Decode an architecture and lay it out:
//
//	import (
//	    "github.com/matzehuels/layerscape/pkg/arch"
//	    "github.com/matzehuels/layerscape/pkg/layout"
//	    "github.com/matzehuels/layerscape/pkg/scene"
//	)
//
//	// 1. Decode the layer list
//	a, _ := arch.ReadFile("mnist.json")
//
//	// 2. Build the scene
//	s := layout.Build(a, layout.WithNeuronCap(50))
//
//	// 3. Export a document
//	data, _ := scene.MarshalDocument(scene.Export(s))
//
// # Main Packages
//
// ## Domain Logic
//
// [arch] - Layer descriptors and their JSON/YAML wire formats. Shapes keep the
// leading batch dimension as an unknown.
//
// [scale] - The sigmoid that maps a pixel size onto a scene scale, and the
// depth compression factor.
//
// [layout] - Template registry (Conv2D, MaxPooling2D, Dense, Flatten, ...),
// feature-map grids, unit-marker clouds and placement along the depth axis.
//
// [scene] - Vectors, bounding boxes, visual nodes and the serializable scene
// [scene.Document].
//
// ## Interaction
//
// [interact] - The hover/activate state machine and inspector payloads.
//
// [viewer] - Owns one scene and routes pointer events by layer index.
//
// ## Infrastructure
//
// [pipeline] - Load → layout with caching, used by the CLI and the server.
//
// [cache] - File, Redis and null caches for raw payloads and scene documents.
//
// [store] - Saved scenes in memory or MongoDB.
//
// [session] - Per-client viewers with TTL expiry.
//
// [server] - The HTTP API.
//
// [config] - TOML configuration.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// Redis and MongoDB tests run only when LAYERSCAPE_REDIS_ADDR and
// LAYERSCAPE_MONGO_URI are set.
//
// [arch]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/arch
// [scale]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/scale
// [layout]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/layout
// [scene]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/scene
// [scene.Document]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/scene#Document
// [interact]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/interact
// [viewer]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/viewer
// [source]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/source
// [httputil]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/httputil
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/layerscape/pkg/observability
package pkg
