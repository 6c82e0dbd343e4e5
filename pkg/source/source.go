// Package source discovers the input files of a build session.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Unit is a discovered source file. Units are immutable for the
// duration of one session; they form the roots of the artifact chains.
type Unit struct {
	// Path is the absolute path of the source file.
	Path string
}

// Name returns the file name of the unit within its directory.
func (u Unit) Name() string {
	return filepath.Base(u.Path)
}

// DiscoveryError reports a source directory that could not be read.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot read source directory %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Discover returns the files directly inside dir whose name ends with
// ext, sorted lexicographically by path. The scan is non-recursive and
// has no side effects. Files whose whole name is the extension are
// skipped since they have no stem to derive artifact names from.
func Discover(dir, ext string) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DiscoveryError{Dir: dir, Err: err}
	}

	var units []Unit
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		if strings.TrimSuffix(name, ext) == "" {
			continue
		}
		units = append(units, Unit{Path: filepath.Join(dir, name)})
	}

	sort.Slice(units, func(i, j int) bool {
		return units[i].Path < units[j].Path
	})

	return units, nil
}
