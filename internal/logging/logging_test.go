package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, DefaultLevel, ParseLevel(""))
	assert.Equal(t, DefaultLevel, ParseLevel("nonsense"))
}

func TestConfigureGlobalWithWriter(t *testing.T) {
	var buf bytes.Buffer
	ConfigureGlobalWithWriter("debug", &buf)

	log := Component("test-component")
	log.Debug().Msg("hello from test")

	out := buf.String()
	assert.Contains(t, out, "hello from test")
	assert.Contains(t, out, `"component":"test-component"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	ConfigureGlobalWithWriter("warn", &buf)

	log := Component("filter")
	log.Info().Msg("should be filtered")
	log.Warn().Msg("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}
