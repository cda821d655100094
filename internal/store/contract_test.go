// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecad/forge/pkg/params"
)

// runContract checks the behavior every Store must share.
func runContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	const script = "/work/models/bracket/main.lua"

	t.Run("Get missing", func(t *testing.T) {
		got, err := s.Get(ctx, "/nowhere/missing.lua")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Set and Get", func(t *testing.T) {
		want := params.Values{
			"size":   12.5,
			"finish": "gloss",
			"hollow": true,
			"tint":   []any{1.0, 0.5, 0.25, 1.0},
		}
		require.NoError(t, s.Set(ctx, script, want))

		got, err := s.Get(ctx, script)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Set replaces", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, script, params.Values{"size": 3.0}))

		got, err := s.Get(ctx, script)
		require.NoError(t, err)
		assert.Equal(t, params.Values{"size": 3.0}, got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		other := "/work/models/lid/main.lua"
		require.NoError(t, s.Set(ctx, other, params.Values{"size": 1.0}))

		got, err := s.Get(ctx, script)
		require.NoError(t, err)
		assert.Equal(t, 3.0, got["size"])
		require.NoError(t, s.Clear(ctx, other))
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx, script))

		got, err := s.Get(ctx, script)
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, s.Clear(ctx, script), "clearing twice")
	})
}
