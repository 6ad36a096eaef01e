package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "", s.OutputDir)
	assert.Equal(t, DefaultMaxParallel, s.MaxParallel)
	assert.Equal(t, DefaultLogLevel, s.LogLevel)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "output_dir: /data/videos\nmax_parallel: 5\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, "/data/videos", s.OutputDir)
	assert.Equal(t, 5, s.MaxParallel)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_parallel: 5\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int(KeyMaxParallel, DefaultMaxParallel, "")
	flags.String(KeyOutputDir, "", "")
	require.NoError(t, flags.Parse([]string{"--max_parallel=2", "--output_dir=/tmp/dl"}))

	s, err := Load(flags, path)
	require.NoError(t, err)

	assert.Equal(t, 2, s.MaxParallel)
	assert.Equal(t, "/tmp/dl", s.OutputDir)
}

func TestLoadClampsMaxParallel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_parallel: 99\n"), 0o644))

	s, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, MaxParallel, s.MaxParallel)
}

func TestClampMaxParallel(t *testing.T) {
	assert.Equal(t, MinParallel, ClampMaxParallel(0))
	assert.Equal(t, MinParallel, ClampMaxParallel(-3))
	assert.Equal(t, 4, ClampMaxParallel(4))
	assert.Equal(t, MaxParallel, ClampMaxParallel(11))
}
