package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".rs", cfg.SourceExt)
	assert.Equal(t, ".o", cfg.ObjectExt)
	assert.Equal(t, "rustc", cfg.Compiler.Command)
	assert.Equal(t, "cc", cfg.Linker.Command)
	assert.False(t, cfg.Run)
}

func TestLoad_SingleFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "source_ext: .c\ncompiler:\n  command: gcc\n  args: [\"-c\", \"-o\", \"{out}\", \"{in}\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ".c", cfg.SourceExt)
	assert.Equal(t, "gcc", cfg.Compiler.Command)
	assert.Equal(t, []string{"-c", "-o", "{out}", "{in}"}, cfg.Compiler.Args)
	// Keys absent from the file keep their defaults
	assert.Equal(t, ".o", cfg.ObjectExt)
	assert.Equal(t, "cc", cfg.Linker.Command)
}

func TestLoad_NearerFileWins(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "project")
	require.NoError(t, os.MkdirAll(child, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(parent, FileName),
		[]byte("source_ext: .c\nrun: true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(child, FileName),
		[]byte("source_ext: .rs\n"), 0644))

	cfg, err := Load(child)
	require.NoError(t, err)

	assert.Equal(t, ".rs", cfg.SourceExt, "child file should override parent")
	assert.True(t, cfg.Run, "parent settings absent from child should survive")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte("source_ext: [unclosed"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
