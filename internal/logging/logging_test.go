// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
		wantErr   bool
	}{
		{level: "", wantDebug: false, wantWarn: true},
		{level: "debug", wantDebug: true, wantWarn: true},
		{level: " INFO ", wantDebug: false, wantWarn: true},
		{level: "error", wantDebug: false, wantWarn: false},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := New(&buf, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q) succeeded, want error", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error: %v", tt.level, err)
			}

			logger.Debug("debug line")
			logger.Warn("warn line", "path", "/m.lua")
			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v (%q)", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "warn line"); got != tt.wantWarn {
				t.Errorf("warn emitted = %v, want %v (%q)", got, tt.wantWarn, out)
			}
		})
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	Nop().Error("dropped")
}
