// Package loader reads settings files and environment variables into
// nested maps.
//
// TOML and YAML files are supported. A missing file is not an error: its
// loader returns a nil map. Maps from several sources are combined with
// DeepMerge, later sources winning.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for a settings file with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown settings format")

// Loader reads settings from one source.
type Loader interface {
	// Load returns the settings, or nil, nil when the source is absent.
	Load() (map[string]any, error)
}

// FileSystem is the part of the file system the loaders read from.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapFS serves files from memory, keyed by path.
type MapFS map[string]string

func (m MapFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

// ForPath returns the loader matching the extension of path.
func ForPath(fsys FileSystem, path string) (Loader, error) {
	if fsys == nil {
		fsys = OSFS{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return &TOMLLoader{fs: fsys, path: path}, nil
	case ".yaml", ".yml":
		return &YAMLLoader{fs: fsys, path: path}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// readFile returns nil, nil when the file does not exist.
func readFile(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}
	return data, nil
}

// ParseError reports a settings file that could not be parsed.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge merges src into dst and returns dst. Nested maps merge
// recursively; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			srcVal = DeepMerge(nil, srcMap)
		}
		dst[key] = srcVal
	}
	return dst
}

// SetByPath stores value under a dot-separated path, creating the
// intermediate maps.
func SetByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// GetByPath looks up a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
