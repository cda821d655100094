// SPDX-License-Identifier: MPL-2.0

package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// KindNumeric is a floating-point value (script types "float", "number", "slider").
	KindNumeric Kind = "numeric"
	// KindInteger is a whole number (script type "int"). Values are truncated.
	KindInteger Kind = "integer"
	// KindBoolean is a checkbox (script type "checkbox").
	KindBoolean Kind = "boolean"
	// KindEnumerated picks one of a fixed list (script types "choice", "radio").
	KindEnumerated Kind = "enumerated"
	// KindText is free-form text (script types "text", "email", "url", "password", "date").
	KindText Kind = "text"
	// KindColor is an RGBA color (script type "color").
	KindColor Kind = "color"
	// KindGroup is a UI heading; it never carries a value.
	KindGroup Kind = "group"
)

var (
	// ErrInvalidDefinition is the sentinel error wrapped by InvalidDefinitionError.
	ErrInvalidDefinition = errors.New("invalid parameter definition")

	typeKinds = map[string]Kind{
		"float":    KindNumeric,
		"number":   KindNumeric,
		"slider":   KindNumeric,
		"int":      KindInteger,
		"checkbox": KindBoolean,
		"choice":   KindEnumerated,
		"radio":    KindEnumerated,
		"text":     KindText,
		"email":    KindText,
		"url":      KindText,
		"password": KindText,
		"date":     KindText,
		"color":    KindColor,
		"group":    KindGroup,
	}
)

type (
	// Kind classifies a parameter for default seeding and value coercion.
	Kind string

	// Values maps parameter names to values.
	Values map[string]any

	// Definition is the metadata a script declares for one editable input.
	Definition struct {
		Name     string   `mapstructure:"name" json:"name" yaml:"name"`
		Type     string   `mapstructure:"type" json:"type" yaml:"type"`
		Kind     Kind     `mapstructure:"-" json:"kind" yaml:"kind"`
		Caption  string   `mapstructure:"caption" json:"caption,omitempty" yaml:"caption,omitempty"`
		Initial  any      `mapstructure:"initial" json:"initial,omitempty" yaml:"initial,omitempty"`
		Checked  bool     `mapstructure:"checked" json:"checked,omitempty" yaml:"checked,omitempty"`
		Min      *float64 `mapstructure:"min" json:"min,omitempty" yaml:"min,omitempty"`
		Max      *float64 `mapstructure:"max" json:"max,omitempty" yaml:"max,omitempty"`
		Step     *float64 `mapstructure:"step" json:"step,omitempty" yaml:"step,omitempty"`
		Values   []any    `mapstructure:"values" json:"values,omitempty" yaml:"values,omitempty"`
		Captions []string `mapstructure:"captions" json:"captions,omitempty" yaml:"captions,omitempty"`
	}

	// InvalidDefinitionError reports why one raw definition entry was rejected.
	// It wraps ErrInvalidDefinition for errors.Is() compatibility.
	InvalidDefinitionError struct {
		Index  int
		Name   string
		Reason string
	}
)

// KindForType maps a script-declared type name to its Kind.
// Unknown and empty type names are treated as text.
func KindForType(typ string) Kind {
	if k, ok := typeKinds[strings.ToLower(strings.TrimSpace(typ))]; ok {
		return k
	}
	return KindText
}

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// Clone returns a shallow copy of the map. A nil map clones to nil.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for name, val := range v {
		out[name] = val
	}
	return out
}

// Error implements the error interface for InvalidDefinitionError.
func (e *InvalidDefinitionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("parameter definition %d (%q): %s", e.Index, e.Name, e.Reason)
	}
	return fmt.Sprintf("parameter definition %d: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidDefinition for errors.Is() compatibility.
func (e *InvalidDefinitionError) Unwrap() error { return ErrInvalidDefinition }

// Decode converts the raw result of a script's getParameterDefinitions call into
// definitions. raw must be a list of maps. Entries that are not maps, lack a name,
// or repeat an earlier name are skipped and reported; the well-formed remainder is
// always returned.
func Decode(raw any) ([]Definition, []error) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, []error{&InvalidDefinitionError{Index: 0, Reason: fmt.Sprintf("expected a list, got %T", raw)}}
	}

	defs := make([]Definition, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	var errs []error
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, &InvalidDefinitionError{Index: i, Reason: fmt.Sprintf("expected a table, got %T", item)})
			continue
		}

		var def Definition
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &def,
		})
		if err != nil {
			return defs, append(errs, err)
		}
		if err := dec.Decode(entry); err != nil {
			errs = append(errs, &InvalidDefinitionError{Index: i, Reason: err.Error()})
			continue
		}

		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			errs = append(errs, &InvalidDefinitionError{Index: i, Reason: "missing name"})
			continue
		}
		if _, dup := seen[def.Name]; dup {
			errs = append(errs, &InvalidDefinitionError{Index: i, Name: def.Name, Reason: "duplicate name"})
			continue
		}
		seen[def.Name] = struct{}{}

		def.Kind = KindForType(def.Type)
		defs = append(defs, def)
	}
	return defs, errs
}
