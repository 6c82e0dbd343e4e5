// Package config loads build settings from forge.yaml files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"forge/pkg/toolchain"
)

// FileName is the name of the configuration file looked up in the
// working directory and each of its ancestors.
const FileName = "forge.yaml"

// Config holds the merged settings for one build session.
type Config struct {
	// SourceExt is the extension of source files, including the dot.
	SourceExt string `yaml:"source_ext"`
	// ObjectExt is the suffix of intermediate object files.
	ObjectExt string `yaml:"object_ext"`
	// Compiler produces an object file from one source file.
	Compiler toolchain.Tool `yaml:"compiler"`
	// Linker produces a binary from one object file.
	Linker toolchain.Tool `yaml:"linker"`
	// Run executes each binary after it is linked.
	Run bool `yaml:"run"`
}

// Default returns the configuration used when no forge.yaml is found.
func Default() Config {
	return Config{
		SourceExt: ".rs",
		ObjectExt: ".o",
		Compiler: toolchain.Tool{
			Command: "rustc",
			Args:    []string{"--emit=obj", "-o", "{out}", "{in}"},
		},
		Linker: toolchain.Tool{
			Command: "cc",
			Args:    []string{"-o", "{out}", "{in}"},
		},
	}
}

// Load walks up the directory hierarchy from startDir collecting every
// forge.yaml, then merges them root to leaf so files nearer the working
// directory override their ancestors. A missing file is not an error.
func Load(startDir string) (Config, error) {
	var files []string
	currentDir := startDir
	for {
		path := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	cfg := Default()
	for i := len(files) - 1; i >= 0; i-- {
		if err := cfg.mergeFile(files[i]); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// mergeFile overlays one config file onto the current configuration.
// Only keys present in the file override.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overlay struct {
		SourceExt *string         `yaml:"source_ext"`
		ObjectExt *string         `yaml:"object_ext"`
		Compiler  *toolchain.Tool `yaml:"compiler"`
		Linker    *toolchain.Tool `yaml:"linker"`
		Run       *bool           `yaml:"run"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if overlay.SourceExt != nil {
		c.SourceExt = *overlay.SourceExt
	}
	if overlay.ObjectExt != nil {
		c.ObjectExt = *overlay.ObjectExt
	}
	if overlay.Compiler != nil {
		c.Compiler = *overlay.Compiler
	}
	if overlay.Linker != nil {
		c.Linker = *overlay.Linker
	}
	if overlay.Run != nil {
		c.Run = *overlay.Run
	}

	return nil
}
