// SPDX-License-Identifier: MPL-2.0

package geometry

import (
	"math"
	"testing"
)

func pt(xs ...float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// unitSquareSolid is a single quad facing +z.
func unitSquareSolid() map[string]any {
	return map[string]any{
		"kind": "solid",
		"polygons": []any{
			map[string]any{"vertices": []any{pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0), pt(0, 1, 0)}},
		},
	}
}

func TestNormalize_FanTriangulationAndFaceNormal(t *testing.T) {
	t.Parallel()

	got, rep := Normalize(unitSquareSolid())
	if len(got) != 1 {
		t.Fatalf("Normalize() returned %d descriptors, want 1", len(got))
	}
	if !rep.Empty() {
		t.Errorf("unexpected warnings: %v", rep.Warnings)
	}

	d := got[0]
	if d.Kind != KindSolid {
		t.Errorf("kind = %q, want solid", d.Kind)
	}
	if d.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", d.VertexCount())
	}
	wantIdx := []uint32{0, 1, 2, 0, 2, 3}
	if len(d.Indices) != len(wantIdx) {
		t.Fatalf("indices = %v, want %v", d.Indices, wantIdx)
	}
	for i := range wantIdx {
		if d.Indices[i] != wantIdx[i] {
			t.Fatalf("indices = %v, want %v", d.Indices, wantIdx)
		}
	}
	for v := range 4 {
		n := d.Normals[v*3 : v*3+3]
		if n[0] != 0 || n[1] != 0 || n[2] != 1 {
			t.Errorf("normal %d = %v, want [0 0 1]", v, n)
		}
		c := d.Colors[v*4 : v*4+4]
		if c[0] != DefaultColor[0] || c[3] != 1 {
			t.Errorf("color %d = %v, want default gray", v, c)
		}
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNormalize_PolygonColorAndItemColor(t *testing.T) {
	t.Parallel()

	g := map[string]any{
		"kind":  "solid",
		"color": pt(1, 0, 0),
		"polygons": []any{
			map[string]any{"vertices": []any{pt(0, 0, 0), pt(1, 0, 0), pt(0, 1, 0)}},
			map[string]any{"vertices": []any{pt(0, 0, 1), pt(1, 0, 1), pt(0, 1, 1)}, "color": "#00ff00"},
		},
	}
	got, _ := Normalize(g)
	d := got[0]
	if d.Colors[0] != 1 || d.Colors[1] != 0 {
		t.Errorf("first face color = %v, want red", d.Colors[:4])
	}
	if d.Colors[12] != 0 || d.Colors[13] != 1 {
		t.Errorf("second face color = %v, want green", d.Colors[12:16])
	}
}

func TestNormalize_OutlineSides(t *testing.T) {
	t.Parallel()

	g := map[string]any{
		"kind": "outline",
		"sides": []any{
			[]any{pt(0, 0), pt(1, 0)},
			[]any{pt(1, 0), pt(1, 1)},
			[]any{pt(1, 1), pt(0, 0)},
		},
	}
	got, rep := Normalize(g)
	if len(got) != 1 || !rep.Empty() {
		t.Fatalf("Normalize() = %d descriptors, warnings %v", len(got), rep.Warnings)
	}
	d := got[0]
	if d.Kind != KindOutline {
		t.Errorf("kind = %q, want outline", d.Kind)
	}
	if d.SegmentCount() != 3 {
		t.Errorf("segments = %d, want 3", d.SegmentCount())
	}
	if d.Normals != nil || d.Indices != nil {
		t.Error("outline must not carry normals or indices")
	}
	if len(d.Colors) != 6*ColorStride {
		t.Errorf("colors length = %d, want %d", len(d.Colors), 6*ColorStride)
	}
}

func TestNormalize_OutlinePointsLoop(t *testing.T) {
	t.Parallel()

	g := map[string]any{"kind": "geom2", "points": []any{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2)}}
	got, _ := Normalize(g)
	if got[0].SegmentCount() != 4 {
		t.Errorf("segments = %d, want 4", got[0].SegmentCount())
	}
	// closing segment ends at the first point
	last := got[0].Positions[len(got[0].Positions)-3:]
	if last[0] != 0 || last[1] != 0 {
		t.Errorf("closing segment ends at %v, want origin", last)
	}
}

func TestNormalize_MixedListKeepsKinds(t *testing.T) {
	t.Parallel()

	raw := []any{
		unitSquareSolid(),
		map[string]any{"kind": "outline", "points": []any{pt(0, 0), pt(1, 0), pt(0, 1)}},
	}
	got, _ := Normalize(raw)
	if len(got) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(got))
	}
	if got[0].Kind != KindSolid || got[1].Kind != KindOutline {
		t.Errorf("kinds = %q, %q; want solid, outline", got[0].Kind, got[1].Kind)
	}
}

func TestNormalize_NamedMapAndNesting(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"lid":  unitSquareSolid(),
		"body": []any{unitSquareSolid(), []any{unitSquareSolid()}},
	}
	got, _ := Normalize(raw)
	if len(got) != 3 {
		t.Fatalf("got %d descriptors, want 3", len(got))
	}
	if got[0].Name != "body" || got[2].Name != "lid" {
		t.Errorf("names = %q, %q, %q; want body, body, lid", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestNormalize_SkipsUnknownItems(t *testing.T) {
	t.Parallel()

	raw := []any{42.0, "text", map[string]any{"kind": "cloud"}, unitSquareSolid()}
	got, rep := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(got))
	}
	if len(rep.Warnings) != 3 {
		t.Errorf("warnings = %v, want 3", rep.Warnings)
	}
	if out, _ := Normalize(nil); len(out) != 0 {
		t.Errorf("Normalize(nil) = %v, want empty", out)
	}
}

func TestNormalize_RepairsRaggedBuffers(t *testing.T) {
	t.Parallel()

	g := map[string]any{
		"kind":      "solid",
		"positions": pt(0, 0, 0, 1, 0, 0, 0, 1, 0, 9),
		"normals":   pt(0, 0, 1, 0, 0, 1),
		"colors":    []any{pt(1, 0, 0), pt(1, 0, 0), pt(1, 0, 0)},
		"indices":   pt(0, 1, 5),
	}
	got, rep := Normalize(g)
	d := got[0]

	if d.VertexCount() != 3 {
		t.Fatalf("vertex count = %d, want 3", d.VertexCount())
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	for v := range 3 {
		if d.Normals[v*3+2] != 1 {
			t.Errorf("normal %d = %v, want up-facing default", v, d.Normals[v*3:v*3+3])
		}
		if d.Colors[v*4] != DefaultColor[0] {
			t.Errorf("color %d = %v, want default gray", v, d.Colors[v*4:v*4+4])
		}
	}
	if len(d.Indices) != 3 || d.Indices[2] != 2 {
		t.Errorf("indices = %v, want sequential [0 1 2]", d.Indices)
	}

	fields := map[string]bool{}
	for _, w := range rep.Warnings {
		fields[w.Field] = true
	}
	for _, f := range []string{"positions", "normals", "colors", "indices"} {
		if !fields[f] {
			t.Errorf("expected a %s warning, got %v", f, rep.Warnings)
		}
	}
}

func TestNormalize_PrebuiltBuffersPassThrough(t *testing.T) {
	t.Parallel()

	g := map[string]any{
		"kind":      "solid",
		"positions": []any{pt(0, 0, 0), pt(1, 0, 0), pt(0, 1, 0)},
		"normals":   pt(0, 0, 1, 0, 0, 1, 0, 0, 1),
		"colors":    pt(1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1),
		"indices":   pt(0, 1, 2),
	}
	got, rep := Normalize(g)
	if !rep.Empty() {
		t.Errorf("unexpected warnings: %v", rep.Warnings)
	}
	if got[0].Colors[0] != 1 || got[0].Colors[1] != 0 {
		t.Errorf("colors were replaced: %v", got[0].Colors)
	}
}

func TestNormalize_TransformCarriedUnchanged(t *testing.T) {
	t.Parallel()

	g := unitSquareSolid()
	tr := pt(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 6, 7, 1)
	g["transforms"] = tr

	got, _ := Normalize(g)
	m := got[0].Transform
	if m == nil {
		t.Fatal("transform dropped")
	}
	if m[12] != 5 || m[13] != 6 || m[14] != 7 {
		t.Errorf("transform = %v", *m)
	}
	// positions are untouched by the transform
	if got[0].Positions[0] != 0 {
		t.Errorf("positions were transformed: %v", got[0].Positions[:3])
	}

	g["transforms"] = pt(1, 2, 3)
	got, rep := Normalize(g)
	if got[0].Transform != nil || rep.Empty() {
		t.Error("malformed transform should be dropped with a warning")
	}
}

func TestNormalize_StrideInvariant(t *testing.T) {
	t.Parallel()

	inputs := []any{
		unitSquareSolid(),
		map[string]any{"kind": "solid", "positions": pt(1, 2)},
		map[string]any{"kind": "solid", "positions": pt(0, 0, 0, 1, 1, 1), "colors": "red"},
		map[string]any{"kind": "solid", "polygons": []any{[]any{pt(0, 0, 0), pt(1, 0, 0)}}},
		map[string]any{"kind": "outline", "sides": []any{[]any{pt(0, 0)}}},
		map[string]any{"kind": "solid", "polygons": "nope", "color": []any{"x"}},
	}
	for i, in := range inputs {
		got, _ := Normalize(in)
		for _, d := range got {
			if err := d.Validate(); err != nil {
				t.Errorf("input %d: %v", i, err)
			}
		}
	}
}

func TestFaceNormalDegenerate(t *testing.T) {
	t.Parallel()

	n := faceNormal([][3]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}})
	if n != DefaultNormal {
		t.Errorf("faceNormal(collinear) = %v, want default", n)
	}

	n = faceNormal([][3]float64{{0, 0, 0}, {0, 0, 2}, {0, 2, 2}})
	if math.Abs(float64(n[0])+1) > 1e-6 {
		t.Errorf("faceNormal(-x face) = %v, want [-1 0 0]", n)
	}
}
