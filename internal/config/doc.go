// Package config loads gridstorm settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults (Default)
//  2. a TOML or YAML file, chosen by extension
//  3. GRIDSTORM_* environment variables
//
// The merged layers are decoded into Settings, rejecting unknown keys, and
// validated. A Config can watch its file and reload on change, publishing
// the new settings on OnReload or the failure on OnError while keeping the
// last good settings.
package config
