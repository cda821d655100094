// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/forgecad/forge/pkg/params"
)

// File is a Store backed by a single TOML document with one table per script:
//
//	["/home/me/models/bracket/main.lua"]
//	size = 12.0
//	finish = "gloss"
//
// The document is read on every Get and rewritten atomically on every change, so
// several processes see each other's edits.
type File struct {
	path string
	mu   sync.Mutex
}

type document map[string]map[string]any

// NewFile creates a File store at path. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

// Get implements Store.
func (f *File) Get(_ context.Context, key string) (params.Values, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	table, ok := doc[key]
	if !ok {
		return nil, nil
	}
	return params.Values(table), nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, key string, values params.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	table := make(map[string]any, len(values))
	for name, v := range values {
		// TOML has no null
		if v != nil {
			table[name] = v
		}
	}
	doc[key] = table
	return f.write(doc)
}

// Clear implements Store.
func (f *File) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.write(doc)
}

func (f *File) read() (document, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}
	doc := document{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse parameter file %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File) write(doc document) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode parameter file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create parameter file directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".params-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write parameter file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write parameter file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write parameter file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace parameter file: %w", err)
	}
	return nil
}
