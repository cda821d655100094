// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the forge CLI commands.
//
// The commands are thin wrappers around internal/engine: they resolve the
// project's entrypoint, open the configured parameter store, run or inspect the
// script and print the outcome. App is the composition root; tests build one
// with injected configuration and writers.
package cmd
