package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLoggingState() {
	Shutdown()
	mu.Lock()
	defer mu.Unlock()
	baseWriter = os.Stderr
	log.Logger = zerolog.New(baseWriter).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestInit_SetsGlobalLevel(t *testing.T) {
	t.Cleanup(resetLoggingState)

	Init(Config{Format: "json", Level: "error"})
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}

func TestInit_WritesJSONToFile(t *testing.T) {
	t.Cleanup(resetLoggingState)

	path := filepath.Join(t.TempDir(), "logs", "cccs.log")
	Init(Config{Format: "json", Level: "debug", File: path})

	log.Info().Str("profile", "work").Msg("Switched active configuration")
	Shutdown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &event))
	assert.Equal(t, "work", event["profile"])
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "Switched active configuration", event["message"])
}

func TestSelectWriter(t *testing.T) {
	orig := isTerminalFn
	t.Cleanup(func() { isTerminalFn = orig })

	isTerminalFn = func(*os.File) bool { return true }
	_, ok := selectWriter("auto", os.Stderr).(zerolog.ConsoleWriter)
	assert.True(t, ok)

	isTerminalFn = func(*os.File) bool { return false }
	assert.Equal(t, os.Stderr, selectWriter("auto", os.Stderr))
	assert.Equal(t, os.Stderr, selectWriter("json", os.Stderr))

	_, ok = selectWriter("console", os.Stderr).(zerolog.ConsoleWriter)
	assert.True(t, ok)
}
