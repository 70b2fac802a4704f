package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestReleaseStore(t *testing.T) {
	tests := []struct {
		name     string
		closeErr error
		code     int
		want     int
		wantLog  string
	}{
		{name: "clean stop", code: 0, want: 0, wantLog: "server stopped"},
		{name: "close fails", closeErr: errors.New("pool busy"), code: 0, want: 1, wantLog: "close store failed"},
		{name: "failure code kept", code: 1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, nil))
			closed := false

			got := releaseStore(log, func() error { closed = true; return tt.closeErr }, tt.code)

			if !closed {
				t.Error("store was not closed")
			}
			if got != tt.want {
				t.Errorf("exit code = %d, want %d", got, tt.want)
			}
			if tt.wantLog != "" && !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log missing %q: %s", tt.wantLog, buf.String())
			}
		})
	}
}
