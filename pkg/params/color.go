// SPDX-License-Identifier: MPL-2.0

package params

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParseColor converts a color value into four 0..1 channels (r, g, b, a).
//
// Accepted forms are a 3- or 4-element numeric list, normalized from 0..255 when any
// channel exceeds 1, and a hex string of 3, 4, 6 or 8 digits with an optional leading
// '#'. Missing alpha defaults to fully opaque. The boolean result is false for
// anything else.
func ParseColor(raw any) ([]float64, bool) {
	if s, ok := raw.(string); ok {
		return parseHexColor(s)
	}

	channels, ok := toFloats(raw)
	if !ok || (len(channels) != 3 && len(channels) != 4) {
		return nil, false
	}

	scale := false
	for _, c := range channels {
		if c > 1 {
			scale = true
			break
		}
	}
	out := make([]float64, 4)
	out[3] = 1
	for i, c := range channels {
		if scale {
			c /= 255
		}
		out[i] = c
	}
	return out, true
}

func parseHexColor(s string) ([]float64, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return nil, false
	}

	out := []float64{0, 0, 0, 1}
	for i := 0; i < len(hex)/2; i++ {
		n, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, false
		}
		out[i] = float64(n) / 255
	}
	return out, true
}

// toFloats flattens a numeric list of any element type into float64s.
func toFloats(raw any) ([]float64, bool) {
	switch v := raw.(type) {
	case []float64:
		return append([]float64(nil), v...), true
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(v))
		for i, item := range v {
			if !isNumber(item) {
				return nil, false
			}
			f, err := cast.ToFloat64E(item)
			if err != nil {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
