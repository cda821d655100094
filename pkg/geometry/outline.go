// SPDX-License-Identifier: MPL-2.0

package geometry

// outline extracts paired-point line segments. Three source shapes are accepted,
// checked in order: "sides" (a list of {a, b} point pairs), "outlines" (a list of
// closed point loops) and "points" (a single closed loop). No triangulation is done.
func outline(index int, m map[string]any, rep *Report) Descriptor {
	d := Descriptor{Kind: KindOutline}
	color := itemColor(index, m, rep)

	emit := func(a, b [3]float64) {
		d.Positions = append(d.Positions,
			float32(a[0]), float32(a[1]), float32(a[2]),
			float32(b[0]), float32(b[1]), float32(b[2]),
		)
		d.Colors = append(d.Colors, color[:]...)
		d.Colors = append(d.Colors, color[:]...)
	}

	switch {
	case m["sides"] != nil:
		sides, ok := m["sides"].([]any)
		if !ok {
			rep.Warn(index, "sides", "expected a list, got %T", m["sides"])
			break
		}
		for si, side := range sides {
			pair, ok := side.([]any)
			if !ok || len(pair) != 2 {
				rep.Warn(index, "sides", "skipping side %d: expected a point pair", si)
				continue
			}
			a, okA := point(pair[0])
			b, okB := point(pair[1])
			if !okA || !okB {
				rep.Warn(index, "sides", "skipping side %d: unreadable point", si)
				continue
			}
			emit(a, b)
		}
	case m["outlines"] != nil:
		loops, ok := m["outlines"].([]any)
		if !ok {
			rep.Warn(index, "outlines", "expected a list, got %T", m["outlines"])
			break
		}
		for li, loop := range loops {
			if !closedLoop(loop, emit) {
				rep.Warn(index, "outlines", "skipping outline %d: needs at least 2 readable points", li)
			}
		}
	case m["points"] != nil:
		if !closedLoop(m["points"], emit) {
			rep.Warn(index, "points", "needs at least 2 readable points")
		}
	}
	return d
}

// closedLoop emits a segment between every consecutive pair of points, including the
// closing segment from the last point back to the first.
func closedLoop(raw any, emit func(a, b [3]float64)) bool {
	list, ok := raw.([]any)
	if !ok {
		return false
	}
	pts := make([][3]float64, 0, len(list))
	for _, v := range list {
		p, ok := point(v)
		if !ok {
			return false
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return false
	}
	for i := range pts {
		emit(pts[i], pts[(i+1)%len(pts)])
	}
	return true
}
