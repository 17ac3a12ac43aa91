package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

func TestNewWithWriter_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "warn")

	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	l.Warn().Str("order_id", "o-1").Msg("stock bajo")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "o-1", entry["order_id"])
	assert.Equal(t, "stock bajo", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_NivelDesconocidoEsInfo(t *testing.T) {
	for _, tc := range []struct {
		level string
		lines int
	}{
		{"", 1},
		{"verbose", 1},
		{" DEBUG ", 2},
	} {
		var buf bytes.Buffer
		l := logger.NewWithWriter(&buf, tc.level)
		l.Debug().Msg("detalle")
		l.Info().Msg("info")
		assert.Equal(t, tc.lines, bytes.Count(buf.Bytes(), []byte("\n")), "nivel %q", tc.level)
	}
}
