package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// EnvLoader reads settings from prefixed environment variables.
// GRIDSTORM_GRID_ROW_HEIGHT becomes grid.rowHeight unless a mapping
// names another path.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix, which
// includes the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: map[string]string{},
		environ: os.Environ,
	}
}

// AddMapping routes one variable to a settings path.
func (l *EnvLoader) AddMapping(env, path string) {
	l.mapping[env] = path
}

// Load returns the settings found in the environment. It is never nil.
func (l *EnvLoader) Load() (map[string]any, error) {
	m := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		SetByPath(m, path, ParseValue(value))
	}
	return m, nil
}

// envToPath turns PREFIX_SECTION_SOME_NAME into section.someName.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(env, l.prefix)), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	var name strings.Builder
	for i, p := range parts[1:] {
		if i > 0 && p != "" {
			p = strings.ToUpper(p[:1]) + p[1:]
		}
		name.WriteString(p)
	}
	return parts[0] + "." + name.String()
}

// ParseValue converts an environment string to a bool, integer, float or
// JSON list. Anything else stays a string.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "[") && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}
