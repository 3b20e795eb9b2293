package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"

	"github.com/meridian-systems/corebus/logging"
)

// Loader reads a BusConfig or ClockConfig (or any struct tagged the same
// way) from a TOML or YAML file, applies "<prefix>_<ENV>" overrides, and
// can watch the file for changes. Grounded on feeders/toml.go,
// feeders/yaml.go, and feeders/affixed_env.go's use of golobby/cast for
// typed coercion.
type Loader[T any] struct {
	path      string
	envPrefix string
	logger    logging.Logger
}

// LoaderOption configures a Loader.
type LoaderOption[T any] func(*Loader[T])

// WithLoaderLogger attaches a Logger for load/reload diagnostics.
func WithLoaderLogger[T any](l logging.Logger) LoaderOption[T] {
	return func(ld *Loader[T]) { ld.logger = logging.OrNoOp(l) }
}

// NewLoader constructs a Loader for path (extension selects TOML vs
// YAML) with environment overrides prefixed by envPrefix
// (e.g. "COREBUS_BUS").
func NewLoader[T any](path, envPrefix string, opts ...LoaderOption[T]) *Loader[T] {
	l := &Loader[T]{path: path, envPrefix: envPrefix, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the file, decodes it into a zero-valued T, and applies
// environment overrides.
func (l *Loader[T]) Load() (T, error) {
	var cfg T

	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(l.path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode toml %s: %w", l.path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(l.path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", l.path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode yaml %s: %w", l.path, err)
		}
	default:
		return cfg, fmt.Errorf("config: unsupported extension %q", ext)
	}

	if err := applyEnvOverrides(&cfg, l.envPrefix); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Watch reloads the file whenever it changes on disk and invokes onChange
// with the newly decoded config. It runs until ctx is cancelled. Hot
// reload only ever replaces the tunables struct a caller reads at its own
// pace; it never reaches into live Bus/Clock state directly, so it cannot
// race with in-flight subscribe/publish/timer operations.
func (l *Loader[T]) Watch(ctx context.Context, onChange func(T)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("config: watch %s: %w", l.path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(l.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := l.Load()
				if err != nil {
					l.logger.Warn("config: reload failed", "path", l.path, "error", err)
					continue
				}
				l.logger.Info("config: reloaded", "path", l.path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config: watch error", "path", l.path, "error", err)
			}
		}
	}()
	return nil
}

// applyEnvOverrides walks cfg's fields for an `env:"NAME"` tag and, if
// "<prefix>_NAME" is set, coerces it via golobby/cast into the field.
func applyEnvOverrides(cfg any, prefix string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("config: applyEnvOverrides requires a non-nil pointer")
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("config: applyEnvOverrides requires a struct pointer")
	}

	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag, ok := field.Tag.Lookup("env")
		if !ok || envTag == "" {
			continue
		}
		envName := strings.ToUpper(envTag)
		if prefix != "" {
			envName = strings.ToUpper(prefix) + "_" + envName
		}
		raw, present := os.LookupEnv(envName)
		if !present {
			continue
		}
		fv := elem.Field(i)
		if !fv.CanSet() {
			continue
		}
		converted, err := cast.FromType(raw, fv.Type())
		if err != nil {
			return fmt.Errorf("config: env %s: %w", envName, err)
		}
		fv.Set(reflect.ValueOf(converted))
	}
	return nil
}
