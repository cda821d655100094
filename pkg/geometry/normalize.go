// SPDX-License-Identifier: MPL-2.0

package geometry

import (
	"math"
	"sort"
	"strings"

	"github.com/forgecad/forge/pkg/params"
)

// item is one geometry value found in the raw output, with its map key when the
// script returned a named map.
type item struct {
	name  string
	value any
}

// Normalize converts raw script output into descriptors.
//
// raw may be nil, a single geometry, a (possibly nested) list of geometries, or a
// named map of geometries. Each geometry declares its kind in a "kind" field; the kind
// is never inferred from buffer shapes. Items that are not geometries are skipped and
// reported. Every returned descriptor satisfies Validate.
func Normalize(raw any) ([]Descriptor, Report) {
	var rep Report
	items := collect("", raw, nil)

	out := make([]Descriptor, 0, len(items))
	for i, it := range items {
		m, ok := it.value.(map[string]any)
		if !ok {
			rep.Warn(i, "", "skipping non-geometry value of type %T", it.value)
			continue
		}

		var d Descriptor
		switch kindOf(m["kind"]) {
		case KindSolid:
			d = solid(i, m, &rep)
		case KindOutline:
			d = outline(i, m, &rep)
		default:
			rep.Warn(i, "kind", "skipping geometry with unknown kind %v", m["kind"])
			continue
		}

		d.Name = it.name
		d.Transform = transformOf(i, m["transforms"], &rep)
		repair(i, &d, &rep)
		out = append(out, d)
	}
	return out, rep
}

// collect flattens raw output into geometry items. Lists are flattened recursively;
// maps without a "kind" field are treated as named maps and walked in key order.
func collect(name string, raw any, acc []item) []item {
	switch v := raw.(type) {
	case nil:
		return acc
	case []any:
		for _, el := range v {
			acc = collect(name, el, acc)
		}
		return acc
	case map[string]any:
		if _, isGeom := v["kind"]; isGeom {
			return append(acc, item{name: name, value: v})
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if name != "" {
				child = name + "." + k
			}
			acc = collect(child, v[k], acc)
		}
		return acc
	default:
		return append(acc, item{name: name, value: raw})
	}
}

func kindOf(v any) Kind {
	s, _ := v.(string)
	switch strings.ToLower(s) {
	case "solid", "geom3":
		return KindSolid
	case "outline", "geom2":
		return KindOutline
	default:
		return ""
	}
}

// colorOf reads an item or polygon color. ok is false when v is absent or malformed.
func colorOf(v any) ([ColorStride]float32, bool) {
	var out [ColorStride]float32
	if v == nil {
		return out, false
	}
	c, ok := params.ParseColor(v)
	if !ok {
		return out, false
	}
	for i := range out {
		out[i] = float32(c[i])
	}
	return out, true
}

func itemColor(index int, m map[string]any, rep *Report) [ColorStride]float32 {
	raw, present := m["color"]
	if !present {
		return DefaultColor
	}
	c, ok := colorOf(raw)
	if !ok {
		rep.Warn(index, "color", "unreadable color %v replaced with default", raw)
		return DefaultColor
	}
	return c
}

func transformOf(index int, v any, rep *Report) *Matrix {
	if v == nil {
		return nil
	}
	nums, ok := flatten(v)
	if !ok || len(nums) != len(Matrix{}) {
		rep.Warn(index, "transforms", "dropping transform that is not 16 numbers")
		return nil
	}
	var m Matrix
	copy(m[:], nums)
	return &m
}

// flatten walks nested numeric lists depth-first. ok is false when any leaf is not
// a number.
func flatten(v any) ([]float64, bool) {
	var out []float64
	var walk func(any) bool
	walk = func(n any) bool {
		switch x := n.(type) {
		case float64:
			out = append(out, x)
		case float32:
			out = append(out, float64(x))
		case int:
			out = append(out, float64(x))
		case int64:
			out = append(out, float64(x))
		case uint32:
			out = append(out, float64(x))
		case []float64:
			out = append(out, x...)
		case []float32:
			for _, f := range x {
				out = append(out, float64(f))
			}
		case []uint32:
			for _, u := range x {
				out = append(out, float64(u))
			}
		case []any:
			for _, el := range x {
				if !walk(el) {
					return false
				}
			}
		default:
			return false
		}
		return true
	}
	if !walk(v) {
		return nil, false
	}
	return out, true
}

// point reads a 2- or 3-component vertex; 2D points get z = 0.
func point(v any) ([3]float64, bool) {
	var p [3]float64
	nums, ok := flatten(v)
	if !ok || len(nums) < 2 || len(nums) > 3 {
		return p, false
	}
	copy(p[:], nums)
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return p, false
		}
	}
	return p, true
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}
