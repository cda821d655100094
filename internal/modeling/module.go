// SPDX-License-Identifier: MPL-2.0

package modeling

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the name scripts pass to require for the Go-native module.
const ModuleName = "modeling"

// Version is exposed to scripts as modeling.version.
const Version = "1.0.0"

var exports = map[string]lua.LGFunction{
	"cube":       cube,
	"cuboid":     cuboid,
	"sphere":     sphere,
	"cylinder":   cylinder,
	"polyhedron": polyhedron,
	"rectangle":  rectangle,
	"circle":     circle,
	"polygon":    polygon,
	"translate":  translate,
	"rotate":     rotate,
	"scale":      scale,
	"colorize":   colorize,
}

// Loader is a lua.LGFunction that pushes a fresh module table. It is suitable both
// for package.preload and for a package.loaders searcher result.
func Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), exports)
	mod.RawSetString("version", lua.LString(Version))
	L.Push(mod)
	return 1
}

// options returns the option table at stack position n, or an empty table when the
// argument is omitted.
func options(L *lua.LState, n int) *lua.LTable {
	return L.OptTable(n, L.NewTable())
}

func number(L *lua.LState, opts *lua.LTable, key string, def float64) float64 {
	v := opts.RawGetString(key)
	if v == lua.LNil {
		return def
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		L.ArgError(1, fmt.Sprintf("%s must be a number, got %s", key, v.Type()))
	}
	return float64(n)
}

func positive(L *lua.LState, opts *lua.LTable, key string, def float64) float64 {
	f := number(L, opts, key, def)
	if f <= 0 {
		L.ArgError(1, fmt.Sprintf("%s must be greater than zero", key))
	}
	return f
}

func segments(L *lua.LState, opts *lua.LTable, def, minimum int) int {
	n := int(number(L, opts, "segments", float64(def)))
	if n < minimum {
		L.ArgError(1, fmt.Sprintf("segments must be at least %d", minimum))
	}
	return n
}

// vector reads an option that is either a single number applied to every axis or a
// list of up to three numbers. Missing trailing components keep their default.
func vector(L *lua.LState, opts *lua.LTable, key string, def vec3) vec3 {
	v := opts.RawGetString(key)
	return toVector(L, 1, v, key, def)
}

func toVector(L *lua.LState, argn int, v lua.LValue, what string, def vec3) vec3 {
	switch x := v.(type) {
	case *lua.LNilType:
		return def
	case lua.LNumber:
		f := float64(x)
		return vec3{f, f, f}
	case *lua.LTable:
		out := def
		n := x.Len()
		if n == 0 || n > 3 {
			L.ArgError(argn, fmt.Sprintf("%s must have 1 to 3 components", what))
		}
		for i := range n {
			c, ok := x.RawGetInt(i + 1).(lua.LNumber)
			if !ok {
				L.ArgError(argn, fmt.Sprintf("%s component %d is not a number", what, i+1))
			}
			out[i] = float64(c)
		}
		return out
	default:
		L.ArgError(argn, fmt.Sprintf("%s must be a number or a list of numbers, got %s", what, v.Type()))
	}
	return def
}
