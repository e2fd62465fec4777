package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/lixenwraith/cellpaint/capture"
	"github.com/lixenwraith/cellpaint/config"
	"github.com/lixenwraith/cellpaint/engine"
	"github.com/lixenwraith/cellpaint/terminal"
)

func TestRun_ConfigErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")}, &stdout, &stderr)
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "missing.toml")

	stderr.Reset()
	t.Setenv("CELLPAINT_FPS", "fast")
	assert.Equal(t, exitConfig, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "CELLPAINT_FPS")
}

func TestRun_BadColorFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitConfig, run([]string{"-color", "sepia"}, &stdout, &stderr))
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitConfig, run([]string{"-frobnicate"}, &stdout, &stderr))
}

func TestRun_NotATerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal")
	}
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitFatal, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), terminal.ErrNotTerminal.Error())
}

// recordSession drives the status page headlessly and writes a capture log
func recordSession(t *testing.T, path string) {
	t.Helper()
	cfg := config.Default()
	cfg.FPS, cfg.TPS = 200, 200

	rec, err := capture.Open(path)
	require.NoError(t, err)
	defer rec.Close()

	h := terminal.NewHeadless(8, 60)
	sched := engine.NewScheduler[pageState](cfg, h, statusPage{}, engine.WithRecorder(rec))

	done := make(chan error, 1)
	go func() { done <- sched.Run(context.Background()) }()

	h.Feed([]byte("++"))
	time.Sleep(30 * time.Millisecond)
	h.Feed([]byte("\x1b[<0;5;3M"))
	h.Resize(10, 70)
	time.Sleep(30 * time.Millisecond)
	h.Feed([]byte("m"))
	time.Sleep(30 * time.Millisecond)
	h.Feed([]byte("\x1b"))
	h.Feed([]byte("q"))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("recording session did not finish")
	}
}

func TestRun_Replay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	recordSession(t, path)

	t.Setenv("CELLPAINT_FPS", "200")
	t.Setenv("CELLPAINT_TPS", "200")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-replay", path}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "matched")
}

func TestRun_ReplayMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitFatal, run([]string{"-replay", filepath.Join(t.TempDir(), "none.jsonl")}, &stdout, &stderr))
}
