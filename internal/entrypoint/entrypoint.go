// SPDX-License-Identifier: MPL-2.0

// Package entrypoint decides which script file a project runs.
package entrypoint

import (
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/forgecad/forge/pkg/cueutil"
)

const (
	// DefaultManifestName is the project manifest file looked up at the root.
	DefaultManifestName = "forge.cue"
	// DefaultScriptName is the conventional script looked up at the root.
	DefaultScriptName = "main.lua"
	// ScriptExtension is the only extension accepted for a script.
	ScriptExtension = ".lua"
)

// Origin records which rule selected an entrypoint.
type Origin int

const (
	// OriginManifest means the manifest's main field named the script.
	OriginManifest Origin = iota
	// OriginDefault means the conventional default script exists at the root.
	OriginDefault
	// OriginActiveFile means the caller's active file was used.
	OriginActiveFile
)

//go:embed manifest_schema.cue
var manifestSchema []byte

type (
	// Entrypoint is a resolved script path and how it was found.
	Entrypoint struct {
		Path   string
		Origin Origin
	}

	// Resolver applies the resolution rules. The zero value is not usable; call New.
	Resolver struct {
		manifestName string
		defaultName  string
		logger       *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)

	manifest struct {
		Main string `json:"main,omitempty"`
	}
)

// String returns the origin as shown to users.
func (o Origin) String() string {
	switch o {
	case OriginManifest:
		return "manifest"
	case OriginDefault:
		return "default"
	case OriginActiveFile:
		return "active file"
	default:
		return "unknown"
	}
}

// WithManifestName overrides DefaultManifestName.
func WithManifestName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.manifestName = name
		}
	}
}

// WithDefaultScript overrides DefaultScriptName.
func WithDefaultScript(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.defaultName = name
		}
	}
}

// WithLogger sets the logger used for skipped candidates.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		manifestName: DefaultManifestName,
		defaultName:  DefaultScriptName,
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the script to run for the project at root, first match wins:
//
//  1. the manifest's main field, when it names an existing script
//  2. the default script at the root
//  3. activeFile, when it has the script extension
//
// A manifest that cannot be read or validated is skipped, never reported. ok is
// false when no rule matches.
func (r *Resolver) Resolve(root, activeFile string) (ep *Entrypoint, ok bool) {
	if root != "" {
		if p, found := r.fromManifest(root); found {
			return &Entrypoint{Path: p, Origin: OriginManifest}, true
		}
		p := filepath.Join(root, r.defaultName)
		if isScript(p) {
			return &Entrypoint{Path: absolute(p), Origin: OriginDefault}, true
		}
	}
	if activeFile != "" && hasScriptExtension(activeFile) {
		return &Entrypoint{Path: absolute(activeFile), Origin: OriginActiveFile}, true
	}
	return nil, false
}

// Revalidate reports whether a previously resolved entrypoint still points at a
// script file.
func (r *Resolver) Revalidate(ep *Entrypoint) bool {
	return ep != nil && isScript(ep.Path)
}

// Resolve uses a default Resolver.
func Resolve(root, activeFile string) (*Entrypoint, bool) {
	return New().Resolve(root, activeFile)
}

func (r *Resolver) fromManifest(root string) (string, bool) {
	path := filepath.Join(root, r.manifestName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	result, err := cueutil.ParseFile[manifest](manifestSchema, path, "#Manifest", cueutil.WithConcrete(false))
	if err != nil {
		r.logger.Debug("ignoring manifest", "path", path, "err", err)
		return "", false
	}

	main := strings.TrimSpace(result.Value.Main)
	if main == "" {
		r.logger.Debug("manifest has no main script", "path", path)
		return "", false
	}
	if !filepath.IsAbs(main) {
		main = filepath.Join(root, main)
	}
	if !hasScriptExtension(main) {
		r.logger.Debug("manifest main is not a script", "path", path, "main", main)
		return "", false
	}
	if !isScript(main) {
		r.logger.Debug("manifest main does not exist", "path", path, "main", main)
		return "", false
	}
	return absolute(main), true
}

func hasScriptExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ScriptExtension)
}

func isScript(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && hasScriptExtension(path)
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
