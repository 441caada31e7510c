package config

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gridstorm/internal/config/loader"
	"github.com/dshills/gridstorm/internal/config/watcher"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/logging"
)

// EnvPrefix starts every environment variable the config reads.
const EnvPrefix = "GRIDSTORM_"

// Config owns the settings loaded from one file and the environment.
type Config struct {
	mu       sync.RWMutex
	path     string
	fs       loader.FileSystem
	env      *loader.EnvLoader
	settings Settings
	loads    int

	log *logging.Logger

	// OnReload publishes settings after a successful Reload.
	OnReload *event.Event[Settings]
	// OnError publishes a failed Reload. The previous settings stay.
	OnError *event.Event[error]
}

// Option configures a Config.
type Option func(*Config)

// WithFS reads the settings file from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) { c.fs = fsys }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) { c.log = l }
}

// WithEnvPrefix replaces the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) { c.env = newEnvLoader(prefix) }
}

func newEnvLoader(prefix string) *loader.EnvLoader {
	env := loader.NewEnvLoader(prefix)
	env.AddMapping(prefix+"LOG_LEVEL", "logging.level")
	env.AddMapping(prefix+"LOG_FILE", "logging.file")
	env.AddMapping(prefix+"THEME", "theme.name")
	env.AddMapping(prefix+"PAGE_SIZE", "view.pageSize")
	env.AddMapping(prefix+"CONFIG", "")
	return env
}

// New creates a config for the file at path. An empty path uses only
// defaults and the environment. Nothing is read until Load.
func New(path string, opts ...Option) *Config {
	c := &Config{
		path:     path,
		fs:       loader.OSFS{},
		env:      newEnvLoader(EnvPrefix),
		settings: Default(),
		OnReload: event.New[Settings](),
		OnError:  event.New[error](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDefault(c.log).WithComponent("config")
	return c
}

// SetLogger replaces the logger, for callers that configure logging from
// the loaded settings. Call it before Watch.
func (c *Config) SetLogger(l *logging.Logger) {
	c.log = logging.OrDefault(l).WithComponent("config")
}

// Path returns the settings file path.
func (c *Config) Path() string {
	return c.path
}

// Settings returns the current settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Loads returns how many times settings were loaded successfully.
func (c *Config) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

// Load reads every layer and replaces the current settings. On error the
// current settings are unchanged.
func (c *Config) Load() error {
	s, err := c.read()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.settings = s
	c.loads++
	c.mu.Unlock()
	c.log.Info("loaded settings from %s", c.describe())
	return nil
}

// Reload is Load publishing the outcome on OnReload or OnError.
func (c *Config) Reload() error {
	if err := c.Load(); err != nil {
		c.log.Warn("reload failed: %v", err)
		c.OnError.Notify(err, nil)
		return err
	}
	c.OnReload.Notify(c.Settings(), nil)
	return nil
}

// Watch reloads whenever the settings file changes.
func (c *Config) Watch(opts watcher.Options) (*watcher.Watcher, error) {
	if c.path == "" {
		return nil, fmt.Errorf("watch: no settings file")
	}
	if opts.Logger == nil {
		opts.Logger = c.log
	}
	return watcher.New(c.path, opts, func(op watcher.Op) {
		c.log.Debug("settings file %s", op)
		_ = c.Reload()
	})
}

func (c *Config) describe() string {
	if c.path == "" {
		return "defaults and environment"
	}
	return c.path
}

func (c *Config) read() (Settings, error) {
	merged, err := toMap(Default())
	if err != nil {
		return Settings{}, err
	}

	if c.path != "" {
		l, err := loader.ForPath(c.fs, c.path)
		if err != nil {
			return Settings{}, err
		}
		file, err := l.Load()
		if err != nil {
			return Settings{}, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	env, err := c.env.Load()
	if err != nil {
		return Settings{}, err
	}
	merged = loader.DeepMerge(merged, env)

	s, err := decode(merged)
	if err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func toMap(s Settings) (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// decode converts merged layers into Settings, rejecting unknown keys.
func decode(m map[string]any) (Settings, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Settings{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Settings
	if err := dec.Decode(&s); err != nil {
		if strings.Contains(err.Error(), "not found in type") {
			return Settings{}, fmt.Errorf("%w: %s", ErrUnknownSetting, strings.TrimPrefix(err.Error(), "yaml: "))
		}
		return Settings{}, &ValidationError{Path: "settings", Message: err.Error(), Value: nil}
	}
	return s, nil
}
