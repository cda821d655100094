// SPDX-License-Identifier: MPL-2.0

package modeling

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/forgecad/forge/internal/luaconv"
	"github.com/forgecad/forge/pkg/geometry"
	"github.com/forgecad/forge/pkg/params"
)

// Identity is the identity transform.
func Identity() geometry.Matrix {
	return geometry.Matrix{0: 1, 5: 1, 10: 1, 15: 1}
}

// Translation moves by v.
func Translation(v [3]float64) geometry.Matrix {
	m := Identity()
	m[12], m[13], m[14] = v[0], v[1], v[2]
	return m
}

// Scaling scales each axis by the matching component of v.
func Scaling(v [3]float64) geometry.Matrix {
	m := Identity()
	m[0], m[5], m[10] = v[0], v[1], v[2]
	return m
}

// Rotation rotates by the given radians about x, then y, then z.
func Rotation(angles [3]float64) geometry.Matrix {
	sx, cx := math.Sincos(angles[0])
	sy, cy := math.Sincos(angles[1])
	sz, cz := math.Sincos(angles[2])

	rx := Identity()
	rx[5], rx[6], rx[9], rx[10] = cx, sx, -sx, cx
	ry := Identity()
	ry[0], ry[2], ry[8], ry[10] = cy, -sy, sy, cy
	rz := Identity()
	rz[0], rz[1], rz[4], rz[5] = cz, sz, -sz, cz

	return Multiply(rz, Multiply(ry, rx))
}

// Multiply returns a*b for column-major matrices, so b is applied first.
func Multiply(a, b geometry.Matrix) geometry.Matrix {
	var out geometry.Matrix
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// translate(v, geometry...) where v is {x, y, z}.
func translate(L *lua.LState) int {
	v := toVector(L, 1, L.Get(1), "offset", vec3{})
	return transformWith(L, Translation(v))
}

// rotate(angles, geometry...) where angles are radians about x, y and z.
func rotate(L *lua.LState) int {
	v := toVector(L, 1, L.Get(1), "angles", vec3{})
	return transformWith(L, Rotation(v))
}

// scale(factors, geometry...) where factors is a number or {x, y, z}.
func scale(L *lua.LState) int {
	v := toVector(L, 1, L.Get(1), "factors", vec3{1, 1, 1})
	return transformWith(L, Scaling(v))
}

// colorize(color, geometry...) accepts a 3 or 4 element list or a hex string.
func colorize(L *lua.LState) int {
	c, ok := params.ParseColor(luaconv.FromLua(L.Get(1)))
	if !ok {
		L.ArgError(1, "color must be a list of 3 or 4 numbers or a hex string")
	}
	color := pointTable(L, c)
	return each(L, func(g *lua.LTable) {
		g.RawSetString("color", color)
	})
}

// transformWith composes m in front of each geometry's existing transform.
func transformWith(L *lua.LState, m geometry.Matrix) int {
	return each(L, func(g *lua.LTable) {
		cur := matrixOf(g.RawGetString("transforms"))
		next := Multiply(m, cur)
		g.RawSetString("transforms", pointTable(L, next[:]))
	})
}

// each applies fn to a copy of every geometry argument from position 2 on. A single
// argument returns a single result; several arguments return a list.
func each(L *lua.LState, fn func(*lua.LTable)) int {
	top := L.GetTop()
	if top < 2 {
		L.ArgError(2, "geometry expected")
	}
	if top == 2 {
		L.Push(mapGeometry(L, 2, L.Get(2), fn))
		return 1
	}
	out := L.CreateTable(top-1, 0)
	for i := 2; i <= top; i++ {
		out.RawSetInt(i-1, mapGeometry(L, i, L.Get(i), fn))
	}
	L.Push(out)
	return 1
}

// mapGeometry copies a geometry table before handing it to fn so the caller's value
// is never mutated. Lists are walked recursively.
func mapGeometry(L *lua.LState, argn int, v lua.LValue, fn func(*lua.LTable)) lua.LValue {
	t, ok := v.(*lua.LTable)
	if !ok {
		L.ArgError(argn, fmt.Sprintf("geometry expected, got %s", v.Type()))
	}
	if t.RawGetString("kind") == lua.LNil {
		out := L.CreateTable(t.Len(), 0)
		for i := 1; i <= t.Len(); i++ {
			out.RawSetInt(i, mapGeometry(L, argn, t.RawGetInt(i), fn))
		}
		return out
	}
	cp := L.CreateTable(0, 4)
	t.ForEach(func(k, val lua.LValue) {
		cp.RawSet(k, val)
	})
	fn(cp)
	return cp
}

func matrixOf(v lua.LValue) geometry.Matrix {
	t, ok := v.(*lua.LTable)
	if !ok || t.Len() != len(geometry.Matrix{}) {
		return Identity()
	}
	var m geometry.Matrix
	for i := range m {
		n, ok := t.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return Identity()
		}
		m[i] = float64(n)
	}
	return m
}
