// Package pkg provides the core libraries for Scalelist scale blending.
//
// # Overview
//
// A scaleList node takes an ordered list of weighted scale contributions and
// produces one combined scale vector, the 4x4 scale matrix built from it,
// and that matrix's inverse. The pkg directory is organized into four main
// areas:
//
//  1. [core] - Domain math (blending, weight normalization, matrices)
//  2. [node] - The node itself (attribute schema, dirty/clean bookkeeping)
//  3. [pipeline] - Orchestration (validate → blend → matrix, cached)
//  4. Infrastructure - [cache], [store], [api], [client], [config]
//
// # Architecture
//
// The typical data flow through Scalelist:
//
//	Node file (JSON / TOML / YAML)
//	         ↓
//	    [io] package (decode, apply defaults)
//	         ↓
//	    [core/blend] package (normalize weights, blend in order)
//	         ↓
//	    [core/xform] package (scale matrix + inverse)
//	         ↓
//	    outputs: scale vector, matrix, inverseMatrix
//
// # Quick Start
//
// Evaluate a node directly:
//
//	out := node.Evaluate(node.Inputs{
//	    NormalizeWeights: true,
//	    List: blend.List{
//	        {Name: "pose", Weight: 1, Absolute: true, Scale: r3.Vec{X: 2, Y: 2, Z: 2}},
//	        {Name: "squash", Weight: 0.5, Scale: r3.Vec{X: 1, Y: 0.5, Z: 1}},
//	    },
//	})
//	fmt.Println(out.Scale, out.Degenerate)
//
// Or through the cached pipeline:
//
//	c, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{Inputs: in})
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/blend] - Relative contributions multiply the running scale,
// absolute contributions interpolate toward their target. Normalization
// rescales weights so their absolute values sum to one.
//
// [core/xform] - Scale matrix construction and inversion. A scale with a
// zero axis is degenerate: its inverse is the zero matrix, never an error.
//
// [node] - Attribute schema, input validation, [node.Evaluate] and the
// stateful [node.ScaleList] with per-attribute dirty tracking.
//
// [dag] - The attribute dependency graph: inputs in row 0, outputs in row 1.
//
// ## Visualization
//
// [render/nodelink] - Graphviz rendering of the attribute dependency graph.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [pipeline] - Evaluation and graph rendering with caching and hooks. Used
// by the CLI and the HTTP API so both behave the same.
//
// [cache] - Result and artifact cache: file, redis and null backends, keyer,
// hashing and retry helpers.
//
// [store] - Named node snapshots in files, SQLite, PostgreSQL or MongoDB.
//
// [api] - HTTP API over the pipeline and store.
//
// [client] - Go client for the HTTP API.
//
// [observability] - Hook interfaces and Prometheus text metrics.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/...               # Specific packages
//	go test -run Example ./pkg/...       # Examples only
//
// Tests for external backends run only when their environment variable is
// set: SCALELIST_TEST_REDIS_URL, SCALELIST_TEST_POSTGRES_DSN and
// SCALELIST_TEST_MONGO_URI.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/core
// [core/blend]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/core/blend
// [core/xform]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/core/xform
// [node]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/node
// [node.Evaluate]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/node#Evaluate
// [node.ScaleList]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/node#ScaleList
// [dag]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/dag
// [render]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/store
// [api]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/api
// [client]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/client
// [config]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/errors
//
// [io]: https://pkg.go.dev/github.com/matzehuels/scalelist/pkg/io
package pkg
