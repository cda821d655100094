// SPDX-License-Identifier: MPL-2.0

package params

import (
	"math"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Resolve produces the effective value for every definition.
//
// Defaults are seeded per kind (see Seed). Each persisted entry whose name matches a
// definition is then coerced to that definition's kind and replaces the seed only when
// coercion succeeds. Persisted entries without a matching definition are ignored.
// Resolve never mutates its inputs and is deterministic.
func Resolve(defs []Definition, persisted Values) Values {
	out := make(Values, len(defs))
	for _, def := range defs {
		if v, ok := Seed(def); ok {
			out[def.Name] = v
		}
	}

	for _, def := range defs {
		raw, ok := persisted[def.Name]
		if !ok {
			continue
		}
		if v, ok := Coerce(def, raw); ok {
			out[def.Name] = v
		}
	}
	return out
}

// Seed returns the default value for a definition and whether one exists.
//
//   - boolean: the declared checked flag (false when absent)
//   - enumerated: the declared initial value, else the first allowed value
//   - group: never seeded
//   - everything else: the declared initial value when present
func Seed(def Definition) (any, bool) {
	switch def.Kind {
	case KindBoolean:
		return def.Checked, true
	case KindEnumerated:
		if def.Initial != nil {
			return def.Initial, true
		}
		if len(def.Values) > 0 {
			return def.Values[0], true
		}
		return nil, false
	case KindGroup:
		return nil, false
	default:
		if def.Initial != nil {
			return def.Initial, true
		}
		return nil, false
	}
}

// Coerce converts a persisted value to the definition's kind. The boolean result is
// false when the value cannot represent that kind and must be discarded.
func Coerce(def Definition, raw any) (any, bool) {
	switch def.Kind {
	case KindNumeric:
		return toFinite(raw)
	case KindInteger:
		f, ok := toFinite(raw)
		if !ok {
			return nil, false
		}
		return math.Trunc(f), true
	case KindBoolean:
		return toBool(raw), true
	case KindEnumerated:
		return matchChoice(def.Values, raw), true
	case KindColor:
		if c, ok := ParseColor(raw); ok {
			return c, true
		}
		return raw, true
	case KindGroup:
		return nil, false
	default:
		return raw, true
	}
}

// toFinite accepts native numbers directly and parses strings; booleans, containers
// and non-finite results are rejected.
func toFinite(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		parsed, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		if !isNumber(raw) {
			return 0, false
		}
		parsed, err := cast.ToFloat64E(raw)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	case nil:
		return false
	}
	if isNumber(raw) {
		f := cast.ToFloat64(raw)
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// matchChoice returns the allowed value whose string form equals raw's, or raw itself.
func matchChoice(allowed []any, raw any) any {
	want := cast.ToString(raw)
	for _, v := range allowed {
		if cast.ToString(v) == want {
			return v
		}
	}
	return raw
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
