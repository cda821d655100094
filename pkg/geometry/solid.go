// SPDX-License-Identifier: MPL-2.0

package geometry

import "math"

// solid builds a solid descriptor from either a polygon list or prebuilt buffers.
func solid(index int, m map[string]any, rep *Report) Descriptor {
	base := itemColor(index, m, rep)
	if polys, ok := m["polygons"]; ok {
		return triangulate(index, polys, base, rep)
	}
	return fromBuffers(index, m, base, rep)
}

// triangulate fan-triangulates every polygon from its first vertex. Each polygon
// contributes its own vertices so that its face normal and color can be duplicated
// across them without sharing with neighbouring faces.
func triangulate(index int, raw any, base [ColorStride]float32, rep *Report) Descriptor {
	d := Descriptor{Kind: KindSolid}
	polys, ok := raw.([]any)
	if !ok {
		rep.Warn(index, "polygons", "expected a list, got %T", raw)
		return d
	}

	for pi, poly := range polys {
		verts, color := polygonParts(poly, base)
		pts := make([][3]float64, 0, len(verts))
		for _, v := range verts {
			p, ok := point(v)
			if !ok {
				pts = nil
				break
			}
			pts = append(pts, p)
		}
		if len(pts) < 3 {
			rep.Warn(index, "polygons", "skipping polygon %d: needs at least 3 readable vertices", pi)
			continue
		}

		n := faceNormal(pts)
		first := uint32(d.VertexCount())
		for _, p := range pts {
			d.Positions = append(d.Positions, float32(p[0]), float32(p[1]), float32(p[2]))
			d.Normals = append(d.Normals, n[0], n[1], n[2])
			d.Colors = append(d.Colors, color[:]...)
		}
		for k := uint32(1); int(k)+1 < len(pts); k++ {
			d.Indices = append(d.Indices, first, first+k, first+k+1)
		}
	}
	return d
}

// polygonParts accepts either {vertices = {...}, color = {...}} or a bare vertex list.
func polygonParts(poly any, base [ColorStride]float32) ([]any, [ColorStride]float32) {
	switch p := poly.(type) {
	case map[string]any:
		verts, _ := p["vertices"].([]any)
		if c, ok := colorOf(p["color"]); ok {
			return verts, c
		}
		return verts, base
	case []any:
		return p, base
	default:
		return nil, base
	}
}

// faceNormal is the normalized cross product of the first two edges. Degenerate
// faces fall back to the default normal.
func faceNormal(pts [][3]float64) [3]float32 {
	a := sub(pts[1], pts[0])
	b := sub(pts[2], pts[0])
	n := [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	length := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if length == 0 || math.IsNaN(length) {
		return DefaultNormal
	}
	return [3]float32{float32(n[0] / length), float32(n[1] / length), float32(n[2] / length)}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// fromBuffers accepts a solid that already carries positions and optionally
// normals, indices and colors. Shape problems are left for repair to fix.
func fromBuffers(index int, m map[string]any, base [ColorStride]float32, rep *Report) Descriptor {
	d := Descriptor{Kind: KindSolid}

	positions, ok := flatten(m["positions"])
	if !ok {
		rep.Warn(index, "positions", "unreadable position buffer, emitting empty solid")
		return d
	}
	d.Positions = toFloat32(positions)

	if raw, present := m["normals"]; present {
		if normals, ok := flatten(raw); ok {
			d.Normals = toFloat32(normals)
		} else {
			d.Normals = []float32{}
		}
	}

	if raw, present := m["colors"]; present {
		if colors, ok := flatten(raw); ok {
			d.Colors = toFloat32(colors)
		} else {
			d.Colors = []float32{}
		}
	} else {
		vc := len(d.Positions) / PositionStride
		d.Colors = make([]float32, 0, vc*ColorStride)
		for range vc {
			d.Colors = append(d.Colors, base[:]...)
		}
	}

	if raw, present := m["indices"]; present {
		idx, ok := flatten(raw)
		if !ok {
			rep.Warn(index, "indices", "unreadable index buffer replaced with sequential indices")
		} else {
			d.Indices = make([]uint32, 0, len(idx))
			for _, f := range idx {
				if f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
					rep.Warn(index, "indices", "non-integer index %v, replacing index buffer", f)
					d.Indices = nil
					break
				}
				d.Indices = append(d.Indices, uint32(f))
			}
		}
	}
	return d
}
