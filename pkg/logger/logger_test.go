package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})
	t.Cleanup(func() { Init(Options{Level: "warn"}) })

	Infof("hidden %d", 1)
	assert.Empty(t, buf.String())

	Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestInit_InvalidLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "chatty", Output: &buf})
	t.Cleanup(func() { Init(Options{Level: "warn"}) })

	Debugf("debug line")
	Infof("info line")
	assert.Empty(t, buf.String())
}

func TestInit_DebugWritesLogFile(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	Init(Options{Level: "debug", Output: &buf, LogDir: dir})
	t.Cleanup(func() { Init(Options{Level: "warn"}) })

	Debugf("[Joke] generating %s", "puns")

	data, err := os.ReadFile(filepath.Join(dir, "joke_cli.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Joke] generating puns")
	assert.Contains(t, buf.String(), "generating puns")
}

func TestInit_ReinitClosesLogFile(t *testing.T) {
	dir := t.TempDir()
	Init(Options{Level: "debug", Output: &bytes.Buffer{}, LogDir: dir})
	t.Cleanup(func() { Init(Options{Level: "warn"}) })

	first := logFile
	require.NotNil(t, first)

	Init(Options{Level: "debug", Output: &bytes.Buffer{}, LogDir: dir})
	require.NotNil(t, logFile)
	assert.NotSame(t, first, logFile)
	_, err := first.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)

	Init(Options{Level: "warn", Output: &bytes.Buffer{}})
	assert.Nil(t, logFile)
}

func TestEventBuilders(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Options{Level: "warn"}) })

	Debug().Str("model", "llama3").Msg("[AI] Sending request")
	Warn().Int("index", 2).Msg("[Feedback] Skipping invalid entry")

	out := buf.String()
	assert.Contains(t, out, "[AI] Sending request")
	assert.Contains(t, out, "model")
	assert.Contains(t, out, "llama3")
	assert.Contains(t, out, "[Feedback] Skipping invalid entry")
	assert.Contains(t, out, "index")
}
