package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscover_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()

	// Created out of order on purpose
	for _, name := range []string{"foo.rs", "bar.rs", "notes.txt", "baz.rs"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", name, err)
		}
	}

	units, err := Discover(dir, ".rs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"bar.rs", "baz.rs", "foo.rs"}
	if len(units) != len(want) {
		t.Fatalf("Expected %d units, got %d", len(want), len(units))
	}
	for i, name := range want {
		if units[i].Path != filepath.Join(dir, name) {
			t.Errorf("Expected unit %d to be %s, got %s", i, name, units[i].Path)
		}
	}
}

func TestDiscover_NonRecursive(t *testing.T) {
	dir := t.TempDir()

	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "hidden.rs"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create nested file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "top.rs"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create top-level file: %v", err)
	}

	units, err := Discover(dir, ".rs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(units) != 1 {
		t.Fatalf("Expected 1 unit, got %d", len(units))
	}
	if units[0].Name() != "top.rs" {
		t.Errorf("Expected top.rs, got %s", units[0].Name())
	}
}

func TestDiscover_SkipsExtensionOnlyName(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, ".rs"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	units, err := Discover(dir, ".rs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("Expected no units, got %d", len(units))
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"), ".rs")
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}

	var discoveryErr *DiscoveryError
	if !errors.As(err, &discoveryErr) {
		t.Fatalf("Expected DiscoveryError, got: %v", err)
	}
	if !os.IsNotExist(errors.Unwrap(discoveryErr)) {
		t.Errorf("Expected wrapped not-exist error, got: %v", discoveryErr.Err)
	}
}

func TestDiscover_StableOrder(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"b.rs", "a.rs", "c.rs"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", name, err)
		}
	}

	first, err := Discover(dir, ".rs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := Discover(dir, ".rs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Expected identical results, got %d and %d units", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Expected stable order at index %d: %s vs %s", i, first[i].Path, second[i].Path)
		}
	}
}
