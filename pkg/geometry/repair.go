// SPDX-License-Identifier: MPL-2.0

package geometry

// repair enforces the stride invariants on a built descriptor. A position buffer with
// a partial trailing vertex is truncated; a normal or color buffer whose length does not
// match the vertex count is discarded and refilled with the default; an index buffer
// that is ragged or out of range is replaced by sequential indices.
func repair(index int, d *Descriptor, rep *Report) {
	if extra := len(d.Positions) % PositionStride; extra != 0 {
		rep.Warn(index, "positions", "dropping %d trailing components", extra)
		d.Positions = d.Positions[:len(d.Positions)-extra]
	}
	if d.Positions == nil {
		d.Positions = []float32{}
	}
	vc := d.VertexCount()

	if d.Kind == KindSolid {
		if len(d.Normals) != vc*NormalStride {
			if d.Normals != nil {
				rep.Warn(index, "normals", "length %d does not match %d vertices, using default normals", len(d.Normals), vc)
			}
			d.Normals = fill(vc, DefaultNormal[:])
		}
		if !indicesValid(d.Indices, vc) {
			if d.Indices != nil {
				rep.Warn(index, "indices", "invalid index buffer replaced with sequential indices")
			}
			d.Indices = sequential(vc)
		}
	} else {
		d.Normals = nil
		d.Indices = nil
	}

	if len(d.Colors) != vc*ColorStride {
		if d.Colors != nil {
			rep.Warn(index, "colors", "length %d does not match %d vertices, using default color", len(d.Colors), vc)
		}
		d.Colors = fill(vc, DefaultColor[:])
	}
}

func fill(count int, value []float32) []float32 {
	out := make([]float32, 0, count*len(value))
	for range count {
		out = append(out, value...)
	}
	return out
}

func indicesValid(indices []uint32, vertexCount int) bool {
	if len(indices)%3 != 0 || (indices == nil && vertexCount > 0) {
		return false
	}
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return false
		}
	}
	return true
}

// sequential indexes whole triangles in vertex order; a trailing partial triangle
// is left unindexed.
func sequential(vertexCount int) []uint32 {
	n := vertexCount - vertexCount%3
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}
