// SPDX-License-Identifier: MPL-2.0

package luaconv

import (
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestFromLua_Script(t *testing.T) {
	t.Parallel()

	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`
		result = {
			list = {1, 2, 3},
			nested = {flag = true, name = "box"},
			empty = {},
			fn = function() end,
		}
		cyclic = {}
		cyclic.self = cyclic
	`); err != nil {
		t.Fatalf("DoString() error: %v", err)
	}

	got := FromLua(L.GetGlobal("result"))
	want := map[string]any{
		"list":   []any{1.0, 2.0, 3.0},
		"nested": map[string]any{"flag": true, "name": "box"},
		"empty":  []any{},
		"fn":     nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromLua() = %#v, want %#v", got, want)
	}

	cyc, ok := FromLua(L.GetGlobal("cyclic")).(map[string]any)
	if !ok {
		t.Fatalf("cyclic table did not convert to a map")
	}
	if cyc["self"] != nil {
		t.Errorf("cycle not cut: %#v", cyc["self"])
	}
}

func TestToLua_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"number", 4.5, 4.5},
		{"int", 7, 7.0},
		{"string", "hello", "hello"},
		{"bool", true, true},
		{"nil", nil, nil},
		{"list", []any{1.0, "a", false}, []any{1.0, "a", false}},
		{"float slice", []float64{0.1, 0.2}, []any{0.1, 0.2}},
		{"map", map[string]any{"size": 10.0, "tags": []string{"x"}}, map[string]any{"size": 10.0, "tags": []any{"x"}}},
		{"named map type", namedMap{"a": 1.0}, map[string]any{"a": 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			L := lua.NewState()
			defer L.Close()

			got := FromLua(ToLua(L, tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("round trip of %#v = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

type namedMap map[string]any
