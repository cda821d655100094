// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"github.com/forgecad/forge/internal/sandbox"
	"github.com/forgecad/forge/pkg/geometry"
	"github.com/forgecad/forge/pkg/params"
)

type (
	// Result is the outcome of one run. Exactly one of Success and Failure is set.
	Result struct {
		Path    string   `json:"path" yaml:"path"`
		Success *Success `json:"success,omitempty" yaml:"success,omitempty"`
		Failure *Failure `json:"failure,omitempty" yaml:"failure,omitempty"`
	}

	// Success carries everything a host needs to render and edit a model.
	Success struct {
		Geometries  []geometry.Descriptor `json:"geometries" yaml:"geometries"`
		Parameters  params.Values         `json:"parameters" yaml:"parameters"`
		Definitions []params.Definition   `json:"definitions" yaml:"definitions"`
		// Repairs counts buffer problems fixed during normalization.
		Repairs int `json:"repairs,omitempty" yaml:"repairs,omitempty"`
	}

	// Failure describes why a run produced no geometry.
	Failure struct {
		Kind     sandbox.Kind      `json:"kind" yaml:"kind"`
		Message  string            `json:"message" yaml:"message"`
		Location *sandbox.Location `json:"location,omitempty" yaml:"location,omitempty"`
		Trace    string            `json:"trace,omitempty" yaml:"trace,omitempty"`
	}
)

// OK reports whether the run succeeded.
func (r *Result) OK() bool {
	return r != nil && r.Success != nil
}

func failure(path string, err *sandbox.Error) *Result {
	return &Result{
		Path: path,
		Failure: &Failure{
			Kind:     err.Kind,
			Message:  err.Message,
			Location: err.Location,
			Trace:    err.Trace,
		},
	}
}
