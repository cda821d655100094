// SPDX-License-Identifier: MPL-2.0

package geometry

import "fmt"

const (
	// KindSolid is a triangulated 3D mesh with normals and an index buffer.
	KindSolid Kind = "solid"
	// KindOutline is 2D line geometry: consecutive position pairs form segments.
	KindOutline Kind = "outline"

	// PositionStride is the number of components per position.
	PositionStride = 3
	// NormalStride is the number of components per normal.
	NormalStride = 3
	// ColorStride is the number of components per RGBA color.
	ColorStride = 4
)

var (
	// DefaultNormal is the up-facing normal used when a normal buffer must be replaced.
	DefaultNormal = [NormalStride]float32{0, 0, 1}
	// DefaultColor is the opaque neutral gray used when a color buffer must be replaced.
	DefaultColor = [ColorStride]float32{0.5, 0.5, 0.5, 1}
)

type (
	// Kind distinguishes solids from outlines.
	Kind string

	// Matrix is a 4x4 column-major transform, as composed by the modeling library.
	Matrix [16]float64

	// Descriptor is one renderable shape in flat-buffer form.
	Descriptor struct {
		// Name is set when the script returned a named map of geometries.
		Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
		Kind      Kind      `json:"kind" yaml:"kind"`
		Positions []float32 `json:"positions" yaml:"positions"`
		// Normals holds one normal per vertex; nil for outlines.
		Normals []float32 `json:"normals,omitempty" yaml:"normals,omitempty"`
		// Indices holds triangle indices into the vertex arrays; nil for outlines.
		Indices []uint32  `json:"indices,omitempty" yaml:"indices,omitempty"`
		Colors  []float32 `json:"colors" yaml:"colors"`
		// Transform is carried from the source item and never applied here.
		Transform *Matrix `json:"transform,omitempty" yaml:"transform,omitempty"`
	}

	// Warning records one repair or skipped item during normalization.
	Warning struct {
		// Index is the position of the item in the flattened result list.
		Index   int
		Field   string
		Message string
	}

	// Report collects the warnings produced by Normalize.
	Report struct {
		Warnings []Warning
	}
)

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// VertexCount returns the number of whole vertices in the position buffer.
func (d *Descriptor) VertexCount() int {
	return len(d.Positions) / PositionStride
}

// TriangleCount returns the number of triangles described by the index buffer.
func (d *Descriptor) TriangleCount() int {
	return len(d.Indices) / 3
}

// SegmentCount returns the number of line segments in an outline.
func (d *Descriptor) SegmentCount() int {
	if d.Kind != KindOutline {
		return 0
	}
	return d.VertexCount() / 2
}

// Validate reports the first stride violation in the descriptor, if any. Descriptors
// returned by Normalize always validate.
func (d *Descriptor) Validate() error {
	if len(d.Positions)%PositionStride != 0 {
		return fmt.Errorf("positions length %d is not a multiple of %d", len(d.Positions), PositionStride)
	}
	vc := d.VertexCount()
	if d.Kind == KindSolid && len(d.Normals) != vc*NormalStride {
		return fmt.Errorf("normals length %d, want %d", len(d.Normals), vc*NormalStride)
	}
	if len(d.Colors) != vc*ColorStride {
		return fmt.Errorf("colors length %d, want %d", len(d.Colors), vc*ColorStride)
	}
	if len(d.Indices)%3 != 0 {
		return fmt.Errorf("indices length %d is not a multiple of 3", len(d.Indices))
	}
	for _, idx := range d.Indices {
		if int(idx) >= vc {
			return fmt.Errorf("index %d out of range for %d vertices", idx, vc)
		}
	}
	return nil
}

// Warn appends a warning to the report.
func (r *Report) Warn(index int, field, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Index: index, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Empty reports whether no warnings were recorded.
func (r *Report) Empty() bool { return len(r.Warnings) == 0 }

// String formats the warning for logs.
func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("item %d: %s", w.Index, w.Message)
	}
	return fmt.Sprintf("item %d: %s: %s", w.Index, w.Field, w.Message)
}
