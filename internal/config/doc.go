// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/forge/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/forge/config.cue on macOS, %APPDATA%\forge\config.cue
// on Windows) and validated against the embedded config_schema.cue. FORGE_* environment
// variables override file values (FORGE_LOG_LEVEL, FORGE_PARAMS_BACKEND, ...).
// Path values are shell-expanded after loading.
package config
