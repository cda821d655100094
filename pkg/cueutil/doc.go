// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against embedded schemas.
//
// Both the project manifest (forge.cue) and the user configuration file
// (config.cue) go through the same three steps: compile the schema, unify the
// user document with a schema definition, then validate and decode into a Go struct.
// Plain JSON is valid CUE, so JSON documents are accepted unchanged.
//
//	//go:embed manifest_schema.cue
//	var manifestSchema []byte
//
//	result, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest",
//	    cueutil.WithFilename("forge.cue"),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
