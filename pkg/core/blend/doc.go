// Package blend combines weighted scale contributions into a single 3D scale.
//
// # Overview
//
// A [List] is an ordered sequence of [Contribution] values. Each contribution
// either poses the running scale toward its target ("absolute") or multiplies
// the running scale by a weighted factor ("relative"). Mixing both kinds in one
// list lets a rig author layer primary and corrective scale drivers.
//
// # Blending
//
// [Average] folds the list into one vector, starting from the identity scale
// (1, 1, 1) and visiting items in list order:
//
//   - Absolute items interpolate: acc = acc*(1-w) + scale*w. Weights are not
//     clamped, so values outside [0, 1] extrapolate.
//   - Relative items with |w| > [Epsilon] compound: acc *= scale*w per axis.
//   - Relative items with a weight of (effectively) zero are skipped.
//
// The fold is not commutative: reordering absolute items changes the result.
//
// # Normalization
//
// [Normalize] rescales weights in place so their absolute values sum to one.
// Lists whose absolute weight sum is exactly 0 or exactly 1 are left untouched.
// Callers normalize before blending, never after.
//
// # Ownership
//
// Lists are transient values rebuilt for every evaluation. Neither function
// retains the list; [Normalize] mutates it, so callers that need the original
// weights should pass [List.Clone].
package blend
