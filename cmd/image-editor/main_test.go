package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-editor/internal/config"
)

func TestRunExportsAndSavesConfig(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	dir := t.TempDir()
	saved := filepath.Join(dir, "effective.toml")

	err := run(options{
		configPath: filepath.Join(dir, "missing.json"),
		saveConfig: saved,
		shapes:     "circle, Circle, hexagon",
		text:       "hello",
		outDir:     dir,
		outName:    "out.png",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.png"))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 400, cfg.Height)

	loaded, err := config.LoadFromFile(saved)
	require.NoError(t, err)
	assert.Equal(t, dir, loaded.Export.OutputDir)
	assert.Equal(t, "out.png", loaded.Export.FileName)
}

func TestRunRefusesToOverwrite(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "canvas-image.png")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	opts := options{configPath: filepath.Join(dir, "missing.json"), outDir: dir}
	err := run(opts)
	assert.ErrorContains(t, err, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	opts.overwrite = true
	require.NoError(t, run(opts))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
}
