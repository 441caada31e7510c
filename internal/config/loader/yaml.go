package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads a YAML settings file.
type YAMLLoader struct {
	fs   FileSystem
	path string
}

// NewYAMLLoader creates a loader for path on the OS file system.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{fs: OSFS{}, path: path}
}

func (l *YAMLLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return ParseYAML(l.path, data)
}

// ParseYAML decodes a YAML mapping. source names the data in errors.
func ParseYAML(source string, data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		msg := strings.TrimPrefix(err.Error(), "yaml: ")
		var line int
		if _, serr := fmt.Sscanf(msg, "line %d:", &line); serr == nil {
			perr.Line = line
			perr.Message = strings.TrimSpace(msg[strings.Index(msg, ":")+1:])
		}
		return nil, perr
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
