// Package pkg provides the core libraries for Chainview sequence visualization.
//
// # Overview
//
// Chainview turns the nested responses of an antibody annotation service into
// flat, render-ready display models and draws them as sequence maps and
// pairwise alignments. The pkg directory is organized into these areas:
//
//  1. [annot] - Payload decoding and normalization into display models
//  2. [palette] - Region type to color assignment, with TOML scheme overrides
//  3. [selection] - Region and position selection state
//  4. [alignment] - Pairwise alignment classification and line mapping
//  5. [render] - SVG and text output sinks
//  6. [pipeline] - Orchestration (normalize → render) with caching
//  7. [cache] - File, Redis, and null cache backends
//  8. [history] - Persisted annotation runs (file and Mongo stores)
//
// # Architecture
//
// The typical data flow through Chainview:
//
//	Annotation Service Payload
//	         ↓
//	    [annot] package (normalize into SequenceModels)
//	         ↓
//	    [render] package (sequence maps, alignments)
//	         ↓
//	    SVG/JSON/text output
//
// # Quick Start
//
// Normalize a payload and render a sequence map:
//
//	import (
//	    "github.com/tmonheim/chainview/pkg/annot"
//	    "github.com/tmonheim/chainview/pkg/palette"
//	    "github.com/tmonheim/chainview/pkg/render"
//	)
//
//	// 1. Decode the raw payload
//	resp, _ := annot.DecodeResponse(payload)
//
//	// 2. Normalize into display models
//	models, failures := annot.NewNormalizer(palette.Default()).Normalize(resp)
//
//	// 3. Render to SVG
//	svg := render.RenderSequenceSVG(models)
//
// Or run the whole flow with caching through the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, payload, pipeline.Options{Formats: []string{"svg"}})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/annot/...     # Specific package
//
// [annot]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/annot
// [palette]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/palette
// [selection]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/selection
// [alignment]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/alignment
// [render]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/cache
// [history]: https://pkg.go.dev/github.com/tmonheim/chainview/pkg/history
package pkg
