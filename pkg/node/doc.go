// Package node implements the scaleList computation node.
//
// A scaleList node holds an ordered list of weighted scale contributions and
// produces a combined scale vector, a 4x4 scale matrix and that matrix's
// inverse. The pure computation is [Evaluate]; [ScaleList] adds the
// dirty/clean bookkeeping a host graph expects.
//
// # Attributes
//
// [DefaultSchema] describes every attribute: long and short names, value
// kind, defaults, suggested bounds, compound structure and categories. The
// schema also records which inputs affect which outputs:
//
//   - active, normalizeWeights, weight and absolute affect every output
//   - scaleX, scaleY and scaleZ affect their own output axis plus both matrices
//   - name affects nothing
//
// [Schema.Graph] exposes these relations as a [dag.DAG] for rendering.
//
// # Compute Requests
//
// A compute request names one attribute. Requests for any attribute in the
// Output category recompute all outputs as a single batch. Requests for
// anything else return [ErrUnknownAttribute], which tells the caller that
// this node does not own the attribute. It is not a failure.
//
// # Degenerate Scales
//
// A combined scale with a zero axis has no inverse. The node still produces
// its outputs: the inverse matrix is the zero matrix and
// [Outputs.Degenerate] is set.
package node
