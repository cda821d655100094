// SPDX-License-Identifier: MPL-2.0

// Package store persists user parameter overrides per script.
//
// Keys are absolute script paths. A Store only holds what the user explicitly set;
// defaults come from the script and coercion happens at resolve time, so stored
// values are kept exactly as given.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgecad/forge/pkg/params"
)

const (
	// BackendMemory keeps overrides for the lifetime of the process.
	BackendMemory = "memory"
	// BackendFile keeps overrides in a TOML document.
	BackendFile = "file"
	// BackendRedis keeps overrides as JSON strings in Redis.
	BackendRedis = "redis"
)

// ErrUnknownBackend is returned when Open is given an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown parameter store backend")

type (
	// Store reads and writes the override map of one script.
	Store interface {
		// Get returns the overrides for key, or nil with no error when none exist.
		Get(ctx context.Context, key string) (params.Values, error)
		// Set replaces the overrides for key.
		Set(ctx context.Context, key string, values params.Values) error
		// Clear removes the overrides for key. Clearing a missing key is not an error.
		Clear(ctx context.Context, key string) error
	}

	// Settings selects and configures a backend for Open.
	Settings struct {
		Backend       string
		File          string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		RedisPrefix   string
	}

	// UnknownBackendError names the rejected backend.
	UnknownBackendError struct {
		Backend string
	}
)

// Error implements the error interface.
func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown parameter store backend %q (expected memory, file or redis)", e.Backend)
}

// Unwrap returns ErrUnknownBackend for errors.Is() compatibility.
func (e *UnknownBackendError) Unwrap() error { return ErrUnknownBackend }

// Open builds the Store described by s. An empty backend selects memory.
func Open(s Settings) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		if s.File == "" {
			return nil, errors.New("file parameter store requires a path")
		}
		return NewFile(s.File), nil
	case BackendRedis:
		var opts []RedisOption
		if s.RedisPrefix != "" {
			opts = append(opts, WithPrefix(s.RedisPrefix))
		}
		return NewRedis(s.RedisAddr, s.RedisPassword, s.RedisDB, opts...), nil
	default:
		return nil, &UnknownBackendError{Backend: s.Backend}
	}
}
