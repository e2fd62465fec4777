package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/cellpaint/render"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cellpaint.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, 30, cfg.TPS)
	assert.Equal(t, 30, cfg.ScrubInterval)
	assert.Equal(t, render.DefaultMergeGap, cfg.MergeGap)
	assert.True(t, cfg.Mouse)
	assert.False(t, cfg.Overlay)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"CELLPAINT_FPS":     "120",
		"CELLPAINT_TPS":     " 20 ",
		"CELLPAINT_MOUSE":   "false",
		"CELLPAINT_SCRUB":   "0",
		"CELLPAINT_OVERLAY": "1",
		"CELLPAINT_COLOR":   "256",
		"CELLPAINT_CAPTURE": "/tmp/session.jsonl",
	}))
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.FPS)
	assert.Equal(t, 20, cfg.TPS)
	assert.False(t, cfg.Mouse)
	assert.Equal(t, 0, cfg.ScrubInterval)
	assert.True(t, cfg.Overlay)
	assert.Equal(t, "256", cfg.Color)
	assert.Equal(t, "/tmp/session.jsonl", cfg.CaptureFile)
}

func TestApplyEnv_MalformedValues(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"CELLPAINT_FPS":   "fast",
		"CELLPAINT_MOUSE": "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CELLPAINT_FPS")
	assert.Contains(t, err.Error(), "CELLPAINT_MOUSE")
	assert.Equal(t, 60, cfg.FPS, "malformed value must not be applied")
}

func TestValidate_Clamps(t *testing.T) {
	cfg := Default()
	cfg.FPS = 0
	cfg.TPS = 5000
	cfg.MergeGap = 99
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MinRate, cfg.FPS)
	assert.Equal(t, MaxRate, cfg.TPS)
	assert.Equal(t, MaxMergeGap, cfg.MergeGap)
}

func TestValidate_Rejects(t *testing.T) {
	cfg := Default()
	cfg.ScrubInterval = -1
	cfg.Color = "sixteen"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 3)
	assert.Equal(t, "scrub_interval", verrs[0].Field)
	assert.Equal(t, "color", verrs[1].Field)
	assert.Equal(t, "log_level", verrs[2].Field)
}

func TestOverlayColors(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg, envMap(map[string]string{
		"CELLPAINT_OVERLAY_FG": "navy",
		"CELLPAINT_OVERLAY_BG": "17",
	})))
	require.NoError(t, cfg.Validate())

	fg, bg := cfg.OverlayColors()
	assert.Equal(t, render.RGB(0, 0, 128), fg)
	assert.Equal(t, render.Indexed(17), bg)

	fg, bg = Default().OverlayColors()
	assert.True(t, fg.IsDefault())
	assert.True(t, bg.IsDefault())

	cfg.OverlayBg = "not-a-color"
	var verrs ValidateErrors
	require.ErrorAs(t, cfg.Validate(), &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "overlay_bg", verrs[0].Field)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
fps = 144
overlay = true
color = "truecolor"
log_file = "/tmp/cellpaint.log"
`)
	cfg := Default()
	require.NoError(t, LoadFile(&cfg, path))
	assert.Equal(t, 144, cfg.FPS)
	assert.Equal(t, 30, cfg.TPS, "absent keys keep defaults")
	assert.True(t, cfg.Overlay)
	assert.Equal(t, "truecolor", cfg.Color)
	assert.Equal(t, "/tmp/cellpaint.log", cfg.LogFile)
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeConfig(t, "fps = 30\nframes_per_second = 30\n")
	cfg := Default()
	err := LoadFile(&cfg, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frames_per_second")
}

func TestLoadFile_Syntax(t *testing.T) {
	path := writeConfig(t, "fps = = 3\n")
	cfg := Default()
	assert.Error(t, LoadFile(&cfg, path))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "fps = 90\ntps = 15\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv("CELLPAINT_TPS", "45")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.FPS)
	assert.Equal(t, 45, cfg.TPS)
}

func TestLoad_InvalidEnvFails(t *testing.T) {
	t.Setenv("CELLPAINT_SCRUB", "-3")
	_, err := Load("")
	assert.Error(t, err)
}

func TestIntervals(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Second/60, cfg.FrameInterval())
	assert.Equal(t, time.Second/30, cfg.TickInterval())

	cfg.Color = ColorTrueColor
	assert.Equal(t, render.ColorModeTrueColor, cfg.ColorMode())
	cfg.Color = Color256
	assert.Equal(t, render.ColorMode256, cfg.ColorMode())
}
