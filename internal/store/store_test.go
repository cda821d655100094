// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecad/forge/pkg/params"
)

func TestMemory_Contract(t *testing.T) {
	runContract(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	in := params.Values{"size": 1.0}
	require.NoError(t, m.Set(ctx, "k", in))

	in["size"] = 2.0
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	got["size"] = 3.0

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again["size"])
}

func TestFile_Contract(t *testing.T) {
	runContract(t, NewFile(filepath.Join(t.TempDir(), "state", "params.toml")))
}

func TestFile_Document(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "params.toml")
	f := NewFile(path)

	require.NoError(t, f.Set(ctx, "/models/a.lua", params.Values{"size": 4.0, "label": nil}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/models/a.lua")
	assert.NotContains(t, string(data), "label")

	// a second store on the same file sees the first one's writes
	got, err := NewFile(path).Get(ctx, "/models/a.lua")
	require.NoError(t, err)
	assert.Equal(t, params.Values{"size": 4.0}, got)
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := NewFile(path).Get(context.Background(), "/models/a.lua")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), path))
}

func newMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestRedis_Contract(t *testing.T) {
	mr := newMiniredis(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	runContract(t, NewRedisFromClient(client))
}

func TestRedis_PrefixAndTTL(t *testing.T) {
	mr := newMiniredis(t)
	s := NewRedis(mr.Addr(), "", 0, WithPrefix("test:"), WithTTL(0))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(context.Background(), "/m.lua", params.Values{"n": 1.0}))
	assert.True(t, mr.Exists("test:/m.lua"))

	raw, err := mr.Get("test:/m.lua")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 1}`, raw)
}

func TestRedis_ServerDown(t *testing.T) {
	mr := newMiniredis(t)
	s := NewRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = s.Close() })
	mr.Close()

	_, err := s.Get(context.Background(), "/m.lua")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	mr := newMiniredis(t)

	tests := []struct {
		name    string
		in      Settings
		wantT   any
		wantErr error
	}{
		{name: "default", in: Settings{}, wantT: &Memory{}},
		{name: "memory", in: Settings{Backend: "Memory"}, wantT: &Memory{}},
		{name: "file", in: Settings{Backend: "file", File: filepath.Join(t.TempDir(), "p.toml")}, wantT: &File{}},
		{name: "redis", in: Settings{Backend: "redis", RedisAddr: mr.Addr(), RedisPrefix: "x:"}, wantT: &Redis{}},
		{name: "unknown", in: Settings{Backend: "etcd"}, wantErr: ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantT, s)
		})
	}

	_, err := Open(Settings{Backend: "file"})
	assert.Error(t, err, "file backend without a path")
}
