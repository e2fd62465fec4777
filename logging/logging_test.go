package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyPathDiscards(t *testing.T) {
	log, c, err := New("", slog.LevelDebug)
	require.NoError(t, err)
	log.Info("dropped")
	assert.NoError(t, c.Close())
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellpaint.log")
	log, c, err := New(path, slog.LevelInfo)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("visible", "k", 1)
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=visible k=1")
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_BadPath(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "missing", "x.log"), slog.LevelInfo)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestThrottled(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	th := NewThrottled(log, time.Hour)

	for i := 0; i < 10; i++ {
		th.Warn("read failed", "i", i)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "read failed"))
}
