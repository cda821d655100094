// SPDX-License-Identifier: MPL-2.0

package modeling

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

type vec3 [3]float64

// cube{size = 2, center = {0, 0, 0}}
func cube(L *lua.LState) int {
	opts := options(L, 1)
	s := positive(L, opts, "size", 2)
	center := vector(L, opts, "center", vec3{})
	L.Push(solidTable(L, box(center, vec3{s, s, s})))
	return 1
}

// cuboid{size = {2, 2, 2}, center = {0, 0, 0}}
func cuboid(L *lua.LState) int {
	opts := options(L, 1)
	size := vector(L, opts, "size", vec3{2, 2, 2})
	for i, c := range size {
		if c <= 0 {
			L.ArgError(1, fmt.Sprintf("size component %d must be greater than zero", i+1))
		}
	}
	center := vector(L, opts, "center", vec3{})
	L.Push(solidTable(L, box(center, size)))
	return 1
}

// box returns the six outward-facing quads of an axis-aligned box.
func box(c, size vec3) [][]vec3 {
	lo := vec3{c[0] - size[0]/2, c[1] - size[1]/2, c[2] - size[2]/2}
	hi := vec3{c[0] + size[0]/2, c[1] + size[1]/2, c[2] + size[2]/2}
	p := func(x, y, z bool) vec3 {
		v := lo
		if x {
			v[0] = hi[0]
		}
		if y {
			v[1] = hi[1]
		}
		if z {
			v[2] = hi[2]
		}
		return v
	}
	// faces in order -x, +x, -y, +y, -z, +z
	return [][]vec3{
		{p(false, false, false), p(false, false, true), p(false, true, true), p(false, true, false)},
		{p(true, false, false), p(true, true, false), p(true, true, true), p(true, false, true)},
		{p(false, false, false), p(true, false, false), p(true, false, true), p(false, false, true)},
		{p(false, true, false), p(false, true, true), p(true, true, true), p(true, true, false)},
		{p(false, false, false), p(false, true, false), p(true, true, false), p(true, false, false)},
		{p(false, false, true), p(true, false, true), p(true, true, true), p(false, true, true)},
	}
}

// sphere{radius = 1, segments = 32, center = {0, 0, 0}} is a UV sphere with
// segments slices around z and segments/2 stacks from pole to pole.
func sphere(L *lua.LState) int {
	opts := options(L, 1)
	r := positive(L, opts, "radius", 1)
	slices := segments(L, opts, 32, 4)
	center := vector(L, opts, "center", vec3{})
	stacks := slices / 2

	p := func(theta, phi float64) vec3 {
		return vec3{
			center[0] + r*math.Sin(theta)*math.Cos(phi),
			center[1] + r*math.Sin(theta)*math.Sin(phi),
			center[2] + r*math.Cos(theta),
		}
	}

	polys := make([][]vec3, 0, slices*stacks)
	for i := range stacks {
		t0 := math.Pi * float64(i) / float64(stacks)
		t1 := math.Pi * float64(i+1) / float64(stacks)
		for j := range slices {
			f0 := 2 * math.Pi * float64(j) / float64(slices)
			f1 := 2 * math.Pi * float64(j+1) / float64(slices)
			a, b, c, d := p(t0, f0), p(t1, f0), p(t1, f1), p(t0, f1)
			switch {
			case i == 0:
				polys = append(polys, []vec3{a, b, c})
			case i == stacks-1:
				polys = append(polys, []vec3{a, b, d})
			default:
				polys = append(polys, []vec3{a, b, c, d})
			}
		}
	}
	L.Push(solidTable(L, polys))
	return 1
}

// cylinder{radius = 1, height = 2, segments = 32, center = {0, 0, 0}} stands along z.
func cylinder(L *lua.LState) int {
	opts := options(L, 1)
	r := positive(L, opts, "radius", 1)
	h := positive(L, opts, "height", 2)
	n := segments(L, opts, 32, 3)
	center := vector(L, opts, "center", vec3{})

	ring := func(z float64) []vec3 {
		out := make([]vec3, n)
		for k := range n {
			phi := 2 * math.Pi * float64(k) / float64(n)
			out[k] = vec3{center[0] + r*math.Cos(phi), center[1] + r*math.Sin(phi), z}
		}
		return out
	}
	bottom := ring(center[2] - h/2)
	top := ring(center[2] + h/2)

	polys := make([][]vec3, 0, n+2)
	for k := range n {
		next := (k + 1) % n
		polys = append(polys, []vec3{bottom[k], bottom[next], top[next], top[k]})
	}
	polys = append(polys, top)
	reversed := make([]vec3, n)
	for k := range n {
		reversed[k] = bottom[n-1-k]
	}
	polys = append(polys, reversed)

	L.Push(solidTable(L, polys))
	return 1
}

// polyhedron{points = {{x, y, z}, ...}, faces = {{0, 1, 2}, ...}} takes zero-based
// face indices into points, each face wound counter-clockwise seen from outside.
func polyhedron(L *lua.LState) int {
	opts := L.CheckTable(1)
	pts, ok := opts.RawGetString("points").(*lua.LTable)
	if !ok {
		L.ArgError(1, "points must be a list")
	}
	faces, ok := opts.RawGetString("faces").(*lua.LTable)
	if !ok {
		L.ArgError(1, "faces must be a list")
	}

	points := make([]vec3, pts.Len())
	for i := range points {
		points[i] = toVector(L, 1, pts.RawGetInt(i+1), fmt.Sprintf("point %d", i+1), vec3{})
	}

	polys := make([][]vec3, 0, faces.Len())
	for f := 1; f <= faces.Len(); f++ {
		face, ok := faces.RawGetInt(f).(*lua.LTable)
		if !ok || face.Len() < 3 {
			L.ArgError(1, fmt.Sprintf("face %d needs at least 3 indices", f))
		}
		poly := make([]vec3, 0, face.Len())
		for k := 1; k <= face.Len(); k++ {
			idx, ok := face.RawGetInt(k).(lua.LNumber)
			if !ok || int(idx) < 0 || int(idx) >= len(points) || float64(idx) != math.Trunc(float64(idx)) {
				L.ArgError(1, fmt.Sprintf("face %d has an invalid point index", f))
			}
			poly = append(poly, points[int(idx)])
		}
		polys = append(polys, poly)
	}
	L.Push(solidTable(L, polys))
	return 1
}

// rectangle{size = {2, 2}, center = {0, 0}}
func rectangle(L *lua.LState) int {
	opts := options(L, 1)
	size := vector(L, opts, "size", vec3{2, 2, 0})
	if size[0] <= 0 || size[1] <= 0 {
		L.ArgError(1, "size must be greater than zero")
	}
	c := vector(L, opts, "center", vec3{})
	w, h := size[0]/2, size[1]/2
	L.Push(outlineTable(L, []vec3{
		{c[0] - w, c[1] - h, 0},
		{c[0] + w, c[1] - h, 0},
		{c[0] + w, c[1] + h, 0},
		{c[0] - w, c[1] + h, 0},
	}))
	return 1
}

// circle{radius = 1, segments = 32, center = {0, 0}}
func circle(L *lua.LState) int {
	opts := options(L, 1)
	r := positive(L, opts, "radius", 1)
	n := segments(L, opts, 32, 3)
	c := vector(L, opts, "center", vec3{})
	pts := make([]vec3, n)
	for k := range n {
		phi := 2 * math.Pi * float64(k) / float64(n)
		pts[k] = vec3{c[0] + r*math.Cos(phi), c[1] + r*math.Sin(phi), 0}
	}
	L.Push(outlineTable(L, pts))
	return 1
}

// polygon{points = {{x, y}, ...}} is a closed outline through the given points.
func polygon(L *lua.LState) int {
	opts := L.CheckTable(1)
	list, ok := opts.RawGetString("points").(*lua.LTable)
	if !ok || list.Len() < 3 {
		L.ArgError(1, "points must list at least 3 points")
	}
	pts := make([]vec3, list.Len())
	for i := range pts {
		pts[i] = toVector(L, 1, list.RawGetInt(i+1), fmt.Sprintf("point %d", i+1), vec3{})
		pts[i][2] = 0
	}
	L.Push(outlineTable(L, pts))
	return 1
}

func solidTable(L *lua.LState, polys [][]vec3) *lua.LTable {
	list := L.CreateTable(len(polys), 0)
	for i, poly := range polys {
		verts := L.CreateTable(len(poly), 0)
		for j, v := range poly {
			verts.RawSetInt(j+1, pointTable(L, v[:]))
		}
		p := L.CreateTable(0, 1)
		p.RawSetString("vertices", verts)
		list.RawSetInt(i+1, p)
	}
	g := L.CreateTable(0, 2)
	g.RawSetString("kind", lua.LString("solid"))
	g.RawSetString("polygons", list)
	return g
}

// outlineTable closes the loop through pts into paired-point sides.
func outlineTable(L *lua.LState, pts []vec3) *lua.LTable {
	sides := L.CreateTable(len(pts), 0)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		side := L.CreateTable(2, 0)
		side.RawSetInt(1, pointTable(L, a[:2]))
		side.RawSetInt(2, pointTable(L, b[:2]))
		sides.RawSetInt(i+1, side)
	}
	g := L.CreateTable(0, 2)
	g.RawSetString("kind", lua.LString("outline"))
	g.RawSetString("sides", sides)
	return g
}

func pointTable(L *lua.LState, v []float64) *lua.LTable {
	t := L.CreateTable(len(v), 0)
	for i, c := range v {
		t.RawSetInt(i+1, lua.LNumber(c))
	}
	return t
}
