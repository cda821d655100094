// SPDX-License-Identifier: MPL-2.0

// Package params models script-declared parameters and resolves their effective values.
//
// A script declares its editable inputs through an optional getParameterDefinitions
// function. Each entry decodes into a Definition whose Kind drives both the seeded
// default and the coercion applied to persisted user overrides. Resolve merges the two:
// defaults first, then every persisted value that coerces cleanly for its kind. A value
// that fails coercion is discarded and the default stays in place, so a malformed
// override never reaches the script.
package params
