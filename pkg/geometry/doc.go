// SPDX-License-Identifier: MPL-2.0

// Package geometry converts raw script output into uniform, buffer-based descriptors.
//
// Scripts return geometry in whatever shape the modeling library produced: a single
// value, a list, or a named map; solids described as polygon lists or as prebuilt
// buffers; outlines as side pairs, closed point loops or nested outlines. Normalize
// reduces all of these to Descriptor values whose attribute buffers are flat float32
// (or uint32 for indices) slices of exact per-vertex stride, ready to hand across a
// process or rendering boundary. Malformed attribute data is repaired in place and
// recorded in the Report; it never fails a run.
package geometry
