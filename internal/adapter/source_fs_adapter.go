package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "sniff.dev/pkg/sniff/internal/model"
)

// Extensions recognized as C++ translation units and headers.
var cppExtensions = map[string]bool{
	".cc":  true,
	".cpp": true,
	".cxx": true,
	".h":   true,
	".hh":  true,
	".hpp": true,
	".ipp": true,
}

var headerExtensions = []string{".h", ".hh", ".hpp"}

// SourceFSAdapter abstracts filesystem operations the domain layer relies on
// when scanning user projects. It hides direct os access so the workflow
// logic can be tested without touching the disk layout assumptions.
type SourceFSAdapter interface {
	// Get discovers analyzable sources under the given path patterns. A
	// trailing "/..." makes a pattern recursive, matching the Go tool
	// convention. Files matching any exclude regex are dropped.
	Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error)

	// Walk traverses the provided root path. When recursive is false the
	// implementation limits itself to the root directory.
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// HashFile returns a stable SHA-256 fingerprint for the file at path.
	HashFile(path m.Path) (string, error)

	// DetectHeaderFile attempts to find the companion header for an
	// implementation file so source/header pairs can be linked.
	DetectHeaderFile(sourcePath m.Path) (m.Path, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type into the domain
// layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the concrete SourceFSAdapter backed by the os and
// filepath packages.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get discovers analyzable C++ sources under the given path patterns.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error) {
	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}

	var sources []m.Source

	for _, pattern := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(pattern)

		err := a.Walk(root, recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || !IsCppFile(path) || matchesAny(excludes, path) {
				return nil
			}

			fullPath, err := filepath.Abs(path)
			if err != nil {
				return err
			}

			if seen[fullPath] {
				return nil
			}

			seen[fullPath] = true

			source, err := a.buildSource(m.Path(fullPath), m.Path(path))
			if err != nil {
				return err
			}

			sources = append(sources, source)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Origin.FullPath < sources[j].Origin.FullPath
	})

	return sources, nil
}

func (a *LocalSourceFSAdapter) buildSource(fullPath, shortPath m.Path) (m.Source, error) {
	hash, err := a.HashFile(fullPath)
	if err != nil {
		return m.Source{}, fmt.Errorf("hash %s: %w", fullPath, err)
	}

	source := m.Source{
		Origin: &m.File{
			FullPath:  fullPath,
			ShortPath: shortPath,
			Hash:      hash,
		},
	}

	headerPath, err := a.DetectHeaderFile(fullPath)
	if err != nil {
		return m.Source{}, err
	}

	if headerPath != "" {
		headerHash, err := a.HashFile(headerPath)
		if err != nil {
			return m.Source{}, fmt.Errorf("hash %s: %w", headerPath, err)
		}

		source.Header = &m.File{
			FullPath:  headerPath,
			ShortPath: headerPath,
			Hash:      headerHash,
		}
	}

	return source, nil
}

// Walk iterates over files under root, optionally descending into
// subdirectories. Hidden and build directories are skipped.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && path != rootStr {
			if !recursive {
				return filepath.SkipDir
			}

			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") || base == "build" || base == "cmake-build-debug" || base == "third_party" {
				return filepath.SkipDir
			}
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// DetectHeaderFile finds the companion header for an implementation file.
// Header inputs and files without a sibling header return "".
func (a *LocalSourceFSAdapter) DetectHeaderFile(sourcePath m.Path) (m.Path, error) {
	source := string(sourcePath)

	ext := filepath.Ext(source)
	if ext == "" || !cppExtensions[ext] || isHeaderExt(ext) {
		return "", nil
	}

	base := strings.TrimSuffix(source, ext)

	for _, headerExt := range headerExtensions {
		candidate := base + headerExt

		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return "", err
		}

		return m.Path(candidate), nil
	}

	return "", nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// IsCppFile reports whether path has a recognized C++ extension.
func IsCppFile(path string) bool {
	return cppExtensions[filepath.Ext(path)]
}

func isHeaderExt(ext string) bool {
	for _, headerExt := range headerExtensions {
		if ext == headerExt {
			return true
		}
	}

	return false
}

func splitPattern(pattern m.Path) (m.Path, bool) {
	p := string(pattern)

	if strings.HasSuffix(p, "/...") {
		root := strings.TrimSuffix(p, "/...")
		if root == "" {
			root = "."
		}

		return m.Path(root), true
	}

	if p == "..." {
		return ".", true
	}

	return m.Path(p), false
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

func matchesAny(excludes []*regexp.Regexp, path string) bool {
	for _, re := range excludes {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}
