package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type loadOptions struct {
	files       []string
	prefix      string
	environment map[string]string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithEnvFiles replaces the default ".env" file list. Missing files are skipped.
func WithEnvFiles(files ...string) LoadOption {
	return func(o *loadOptions) {
		o.files = files
	}
}

// WithPrefix prepends prefix to every variable name looked up.
func WithPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

// WithEnvironment parses from the given map instead of the process environment.
// Env files are not read.
func WithEnvironment(vars map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environment = vars
	}
}

// Load parses environment variables into a new T.
func Load[T any](opts ...LoadOption) (T, error) {
	o := loadOptions{files: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg T

	if o.environment == nil {
		if err := loadEnvFiles(o.files); err != nil {
			return cfg, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// MustLoad is Load that panics on failure. Use it for settings the process
// cannot start without.
func MustLoad[T any](opts ...LoadOption) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Join(ErrLoadingEnvFile, err)
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}
