// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests keep the Go JSON tags and the embedded CUE schema in step, so a
// renamed field cannot silently stop loading.

// cueFields returns the regular field names of a CUE definition.
func cueFields(t *testing.T, def string) map[string]bool {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	val := schema.LookupPath(cue.ParsePath(def))
	if val.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", def, val.Err())
	}

	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	fields := make(map[string]bool)
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}
		fields[strings.TrimSuffix(sel.String(), "?")] = iter.IsOptional()
	}
	return fields
}

// goFields returns the JSON tag names of a struct's exported fields.
func goFields(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		parts := strings.Split(field.Tag.Get("json"), ",")
		if parts[0] == "" || parts[0] == "-" {
			continue
		}
		fields[parts[0]] = slices.Contains(parts[1:], "omitempty")
	}
	return fields
}

func TestSchemaSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#ParamsConfig", reflect.TypeFor[ParamsConfig]()},
		{"#RedisConfig", reflect.TypeFor[RedisConfig]()},
		{"#WatchConfig", reflect.TypeFor[WatchConfig]()},
		{"#LogConfig", reflect.TypeFor[LogConfig]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			t.Parallel()

			cueTags := cueFields(t, tt.def)
			goTags := goFields(t, tt.typ)
			for field := range cueTags {
				if _, ok := goTags[field]; !ok {
					t.Errorf("CUE field %q has no Go JSON tag in %s", field, tt.typ.Name())
				}
			}
			for field := range goTags {
				if _, ok := cueTags[field]; !ok {
					t.Errorf("Go JSON tag %q of %s is missing from %s", field, tt.typ.Name(), tt.def)
				}
			}
		})
	}
}

func TestSchemaConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{"empty", ``, true},
		{"entry function", `entry_function: "build"`, true},
		{"entry function with dash", `entry_function: "build-it"`, false},
		{"manifest with directory", `manifest_name: "conf/forge.cue"`, false},
		{"backend redis", `params: backend: "redis"`, true},
		{"backend unknown", `params: backend: "sqlite"`, false},
		{"negative db", `params: redis: db: -1`, false},
		{"debounce ms", `watch: debounce: "750ms"`, true},
		{"debounce bare number", `watch: debounce: "750"`, false},
		{"log level", `log: level: "trace"`, false},
		{"unknown field", `colour: "red"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := cuecontext.New()
			schema := ctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
			user := ctx.CompileString(tt.data)
			if user.Err() != nil {
				t.Fatalf("test data does not compile: %v", user.Err())
			}
			err := schema.Unify(user).Validate(cue.Concrete(true))
			if tt.valid && err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
