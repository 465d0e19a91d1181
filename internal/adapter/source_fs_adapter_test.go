package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	m "sniff.dev/pkg/sniff/internal/model"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "main.cc"), "int x;\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.cc"), "int y;\n")

		var visited []string

		err := adapter.Walk(m.Path(root), false, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if containsPath(visited, filepath.Join(nestedDir, "child.cc")) {
			t.Fatalf("Walk() unexpectedly visited nested file when recursive is false")
		}

		if !containsPath(visited, filepath.Join(root, "main.cc")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files but skips build dirs", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "child.cc")
		writeTestFile(t, child, "int y;\n")

		buildDir := filepath.Join(root, "build")
		mustMkdir(t, buildDir)
		generated := filepath.Join(buildDir, "gen.cc")
		writeTestFile(t, generated, "int z;\n")

		var visited []string

		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}

		if containsPath(visited, generated) {
			t.Fatalf("Walk() descended into build directory")
		}
	})
}

func TestLocalSourceFSAdapter_Get(t *testing.T) {
	t.Run("discovers cpp files recursively", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "a.cc"), "int a;\n")
		writeTestFile(t, filepath.Join(root, "b.cpp"), "int b;\n")
		writeTestFile(t, filepath.Join(root, "notes.md"), "# notes\n")

		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")})
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if len(sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(sources))
		}

		for _, source := range sources {
			if source.Origin == nil || source.Origin.Hash == "" {
				t.Errorf("source missing origin or hash: %+v", source)
			}
		}
	})

	t.Run("exclude patterns filter files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "a.cc"), "int a;\n")
		writeTestFile(t, filepath.Join(root, "a_test.cc"), "int t;\n")

		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")}, `_test\.cc$`)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if len(sources) != 1 {
			t.Fatalf("expected 1 source, got %d", len(sources))
		}

		if filepath.Base(string(sources[0].Origin.FullPath)) != "a.cc" {
			t.Errorf("wrong file survived the exclude: %s", sources[0].Origin.FullPath)
		}
	})

	t.Run("invalid exclude pattern is rejected", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		_, err := adapter.Get(context.Background(), []m.Path{m.Path(t.TempDir())}, "([")
		if err == nil {
			t.Fatalf("expected an error for an invalid regex")
		}
	})

	t.Run("overlapping patterns deduplicate", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "a.cc"), "int a;\n")

		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root), m.Path(root + "/...")})
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if len(sources) != 1 {
			t.Fatalf("expected 1 deduplicated source, got %d", len(sources))
		}
	})

	t.Run("links companion header", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "widget.cc"), "int w;\n")
		writeTestFile(t, filepath.Join(root, "widget.h"), "#pragma once\n")

		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")})
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		var impl *m.Source

		for i := range sources {
			if filepath.Base(string(sources[i].Origin.FullPath)) == "widget.cc" {
				impl = &sources[i]
			}
		}

		if impl == nil {
			t.Fatalf("widget.cc not discovered")
		}

		if impl.Header == nil || filepath.Base(string(impl.Header.FullPath)) != "widget.h" {
			t.Errorf("expected header link, got %+v", impl.Header)
		}
	})
}

func TestLocalSourceFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.cc")
	content := []byte("int main() { return 0; }\n")

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	expected := fmt.Sprintf("%x", sha256.Sum256(content))

	hash, err := adapter.HashFile(m.Path(path))
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if hash != expected {
		t.Fatalf("HashFile() = %s, want %s", hash, expected)
	}
}

func TestLocalSourceFSAdapter_DetectHeaderFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	t.Run("finds sibling header", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "calc.cpp")
		header := filepath.Join(root, "calc.hpp")
		writeTestFile(t, source, "int c;\n")
		writeTestFile(t, header, "#pragma once\n")

		got, err := adapter.DetectHeaderFile(m.Path(source))
		if err != nil {
			t.Fatalf("DetectHeaderFile() error = %v", err)
		}

		if string(got) != header {
			t.Fatalf("DetectHeaderFile() = %s, want %s", got, header)
		}
	})

	t.Run("header input yields nothing", func(t *testing.T) {
		got, err := adapter.DetectHeaderFile(m.Path("/tmp/calc.h"))
		if err != nil {
			t.Fatalf("DetectHeaderFile() error = %v", err)
		}

		if got != "" {
			t.Fatalf("expected empty result for header input, got %s", got)
		}
	})

	t.Run("missing header yields nothing", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "calc.cc")
		writeTestFile(t, source, "int c;\n")

		got, err := adapter.DetectHeaderFile(m.Path(source))
		if err != nil {
			t.Fatalf("DetectHeaderFile() error = %v", err)
		}

		if got != "" {
			t.Fatalf("expected empty result, got %s", got)
		}
	})
}

func TestIsCppFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"main.cc", true},
		{"main.cpp", true},
		{"main.cxx", true},
		{"widget.h", true},
		{"widget.hpp", true},
		{"impl.ipp", true},
		{"main.go", false},
		{"README.md", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsCppFile(tt.path); got != tt.expected {
				t.Errorf("IsCppFile(%q) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern   m.Path
		root      m.Path
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"./src/...", "./src", true},
		{"./src", "./src", false},
		{"src", "src", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			root, recursive := splitPattern(tt.pattern)
			if root != tt.root || recursive != tt.recursive {
				t.Errorf("splitPattern(%q) = (%q, %v), expected (%q, %v)", tt.pattern, root, recursive, tt.root, tt.recursive)
			}
		})
	}
}
