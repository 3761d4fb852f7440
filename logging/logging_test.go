package logging

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown", "core", "gameclient.foo")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"core":"gameclient.foo"`)

	buf.Reset()
	l, err = New(Options{Level: slog.LevelDebug, Output: &buf})
	require.NoError(t, err)
	l.Debug("text line")
	assert.Contains(t, buf.String(), "msg=\"text line\"")

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	defer SetLogger(orig)

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetLogger(l)
	assert.Same(t, l, Logger())
}
