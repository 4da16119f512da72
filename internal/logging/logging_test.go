package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    hclog.Level
		wantErr bool
	}{
		{raw: "", want: hclog.Warn},
		{raw: "debug", want: hclog.Debug},
		{raw: " INFO ", want: hclog.Info},
		{raw: "trace", want: hclog.Trace},
		{raw: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.raw)
			if tt.wantErr {
				require.ErrorContains(t, err, "unknown log level")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &out, JSON: true})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Named("session").Warn("restore failed", "error", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &line))
	assert.Equal(t, "restore failed", line["@message"])
	assert.Equal(t, "parkyoga.session", line["@module"])
	assert.Equal(t, "boom", line["error"])
}

func TestNewWritesPlainTextToNonTerminal(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &out})
	require.NoError(t, err)

	logger.Warn("refresh failed")

	assert.Contains(t, out.String(), "[WARN]  parkyoga: refresh failed")
	assert.NotContains(t, out.String(), "\x1b[")
}
