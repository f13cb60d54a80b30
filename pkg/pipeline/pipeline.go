// Package pipeline provides the load → layout → export pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Load: resolve a reference (model name, URL, "-" or file) to an
//     architecture, caching fetched payloads by endpoint
//  2. Layout: build the scene and export it as a [scene.Document], caching
//     documents by architecture hash and layout configuration hash
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger, pipeline.WithConfig(cfg))
//	result, err := runner.Execute(ctx, pipeline.Options{Ref: "VGG"})
//	if err != nil {
//	    return err
//	}
//	data, _ := scene.MarshalDocument(result.Document)
package pipeline

import (
	"io"
	"time"

	"github.com/matzehuels/layerscape/pkg/arch"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options selects what a pipeline run loads.
type Options struct {
	// Ref is a configured model name, an http(s) URL, "-" or a file path.
	Ref string `json:"ref"`

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Stdin is read when Ref is "-".
	Stdin io.Reader `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Architecture is the loaded architecture.
	Architecture *arch.Architecture

	// ArchHash is the content hash of the architecture.
	ArchHash string

	// Document is the exported scene.
	Document scene.Document

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Layers      int
	Nodes       int
	Diagnostics int
	LoadTime    time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SourceHit bool
	SceneHit  bool
}
