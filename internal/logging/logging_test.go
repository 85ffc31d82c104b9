package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("maps", "mapmark.log"), LogFilePath("maps"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetup_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", FileName)

	logger, closer, err := Setup(path, "warn")
	require.NoError(t, err)
	logger.Info().Msg("dropped")
	logger.Warn().Str("category", "Dungeons").Msg("unknown marker category")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"category":"Dungeons"`)
	assert.Contains(t, out, `"app":"mapmark"`)
}

func TestSetup_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	logger, closer, err := Setup(path, "info")
	require.NoError(t, err)
	logger.Info().Msg("next")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "previous\n")
	assert.Contains(t, string(data), "next")
}
