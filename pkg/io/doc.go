// Package io reads and writes node files and computed results.
//
// # Node Files
//
// A node file holds the writable inputs of one scaleList node. JSON, TOML
// and YAML are supported; the format follows the file extension (.json,
// .toml, .yaml or .yml):
//
//	normalize_weights: false
//	list:
//	  - name: pose
//	    weight: 1
//	    absolute: true
//	    scale: [2, 2, 2]
//	  - name: squash
//	    weight: 0.5
//	    scale: [1, 0.5, 1]
//
// Missing list fields take the schema defaults: weight 1, relative mode and
// scale (1, 1, 1). Unknown fields are rejected so that typos do not silently
// fall back to defaults.
//
// Use [ImportNode] to read from a path or [ReadNode] to read from any
// io.Reader. [ExportNode] and [WriteNode] write the same shape back.
//
// # Results
//
// [WriteResult] and [ExportResult] encode computed outputs. Matrices are
// written row by row:
//
//	{
//	  "output": [2, 2, 2],
//	  "matrix": [[2, 0, 0, 0], [0, 2, 0, 0], [0, 0, 2, 0], [0, 0, 0, 1]],
//	  ...
//	}
//
// # Dependency Graph
//
// [WriteGraphJSON] exports the attribute dependency graph for external
// tooling.
//
// # Watching
//
// [Watch] re-imports a node file whenever it changes on disk.
package io
