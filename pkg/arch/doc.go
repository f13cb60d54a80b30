// Package arch defines the architecture model consumed by the layout engine.
//
// # Overview
//
// An [Architecture] is an ordered list of [LayerDescriptor] values, one per
// network layer, exactly as a model description service reports them:
//
//	[
//	  {"class_name": "Conv2D", "index": 0, "name": "conv2d",
//	   "output_shape": [null, 28, 28, 32], "parameters": 320, "activation": "relu"},
//	  {"class_name": "Flatten", "index": 1, "name": "flatten",
//	   "output_shape": [null, 25088], "parameters": 0, "activation": null}
//	]
//
// The package never computes anything from these values; it only decodes,
// normalizes and validates them. Layout lives in [layout].
//
// # Decoding
//
// [Decode] accepts a bare JSON array, the wrapped form {"layers": [...]}, or
// the same structure in YAML. Field aliases (kind, shape, param_count) are
// accepted alongside the service's native names. A null dimension decodes to
// [UnknownDim].
//
// Every decoding or validation failure is reported as a PARSE_ERROR from
// [github.com/matzehuels/layerscape/pkg/errors]; no partial architecture is
// ever returned.
//
// [layout]: github.com/matzehuels/layerscape/pkg/layout
package arch
