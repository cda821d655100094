// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
		contains []string
	}{
		{
			name: "zero value",
			cfg:  Config{},
		},
		{
			name: "all valid fields",
			cfg: Config{
				Root:     "/home/user/model",
				Patterns: []string{"**/*.lua", "forge.cue"},
				Ignore:   []string{"build/**"},
				Debounce: 250 * time.Millisecond,
			},
		},
		{
			name:     "empty pattern",
			cfg:      Config{Patterns: []string{""}},
			wantErr:  true,
			contains: []string{"invalid watch pattern"},
		},
		{
			name:     "unterminated class",
			cfg:      Config{Patterns: []string{"**/*.lua", "[abc"}},
			wantErr:  true,
			contains: []string{`"[abc"`},
		},
		{
			name:     "bad ignore",
			cfg:      Config{Ignore: []string{"{a,b"}},
			wantErr:  true,
			contains: []string{"invalid ignore pattern"},
		},
		{
			name:     "negative debounce",
			cfg:      Config{Debounce: -time.Second},
			wantErr:  true,
			contains: []string{"negative debounce"},
		},
		{
			name: "every problem reported",
			cfg: Config{
				Patterns: []string{"[x"},
				Ignore:   []string{""},
				Debounce: -1,
			},
			wantErr:  true,
			contains: []string{"invalid watch pattern", "invalid ignore pattern", "negative debounce"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() = %q, missing %q", err, want)
				}
			}
		})
	}
}
