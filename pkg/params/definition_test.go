// SPDX-License-Identifier: MPL-2.0

package params

import (
	"errors"
	"testing"
)

func TestKindForType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  string
		want Kind
	}{
		{"float", KindNumeric},
		{"Number", KindNumeric},
		{"slider", KindNumeric},
		{"int", KindInteger},
		{"checkbox", KindBoolean},
		{"choice", KindEnumerated},
		{"radio", KindEnumerated},
		{"email", KindText},
		{"color", KindColor},
		{"group", KindGroup},
		{"", KindText},
		{"mystery", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			t.Parallel()
			if got := KindForType(tt.typ); got != tt.want {
				t.Errorf("KindForType(%q) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	raw := []any{
		map[string]any{"name": "size", "type": "float", "initial": 10.0, "min": 1.0, "caption": "Size"},
		map[string]any{"name": "hollow", "type": "checkbox", "checked": true},
		map[string]any{"name": "finish", "type": "choice", "values": []any{"matte", "gloss"}, "captions": []any{"Matte", "Gloss"}},
		map[string]any{"type": "int"},
		map[string]any{"name": "size", "type": "int"},
		"not a table",
	}

	defs, errs := Decode(raw)
	if len(defs) != 3 {
		t.Fatalf("Decode() returned %d definitions, want 3: %+v", len(defs), defs)
	}
	if len(errs) != 3 {
		t.Fatalf("Decode() returned %d errors, want 3: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrInvalidDefinition) {
			t.Errorf("error %v should wrap ErrInvalidDefinition", err)
		}
	}

	size := defs[0]
	if size.Kind != KindNumeric || size.Initial != 10.0 || size.Min == nil || *size.Min != 1 || size.Caption != "Size" {
		t.Errorf("size decoded as %+v", size)
	}
	if !defs[1].Checked || defs[1].Kind != KindBoolean {
		t.Errorf("hollow decoded as %+v", defs[1])
	}
	if len(defs[2].Values) != 2 || len(defs[2].Captions) != 2 || defs[2].Kind != KindEnumerated {
		t.Errorf("finish decoded as %+v", defs[2])
	}
}

func TestDecode_NonList(t *testing.T) {
	t.Parallel()

	if defs, errs := Decode(nil); defs != nil || errs != nil {
		t.Errorf("Decode(nil) = %v, %v; want nil, nil", defs, errs)
	}

	defs, errs := Decode(map[string]any{"name": "x"})
	if len(defs) != 0 || len(errs) != 1 {
		t.Errorf("Decode(map) = %v, %v; want no definitions and one error", defs, errs)
	}
}

func TestValuesClone(t *testing.T) {
	t.Parallel()

	var empty Values
	if empty.Clone() != nil {
		t.Error("nil Values should clone to nil")
	}

	v := Values{"a": 1.0}
	c := v.Clone()
	c["a"] = 2.0
	if v["a"] != 1.0 {
		t.Error("Clone() shares storage with the original")
	}
}
