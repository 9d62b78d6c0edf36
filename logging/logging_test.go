package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	cases := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{"debug", "debug", zapcore.DebugLevel},
		{"warn", "warn", zapcore.WarnLevel},
		{"unknown_falls_back", "loud", zapcore.InfoLevel},
		{"empty_falls_back", "", zapcore.InfoLevel},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			logger, level, err := New(Config{Level: c.level, Format: "console", OutputPath: "stderr"})
			require.NoError(t, err)
			defer func() { _ = logger.Sync() }()
			if level.Level() != c.want {
				t.Fatalf("New(%q) level = %v, want %v", c.level, level.Level(), c.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	_, level, err := New(Config{Level: "info", OutputPath: "stderr"})
	require.NoError(t, err)

	SetLevel(level, "error")
	assert.Equal(t, zapcore.ErrorLevel, level.Level())
	SetLevel(level, "nonsense")
	assert.Equal(t, zapcore.ErrorLevel, level.Level())
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivetree.log")
	logger, _, err := New(Config{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Info("moved", Path("/a/b"), NodeID("id001"), Op("Move"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"moved"`), line)
	assert.Contains(t, line, `"path":"/a/b"`)
	assert.Contains(t, line, `"node_id":"id001"`)
	assert.Contains(t, line, `"op":"Move"`)
}
