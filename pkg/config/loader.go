package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option configures Load.
type Option func(*options)

type options struct {
	files   []string
	environ map[string]string
	prefix  string
}

// WithEnvFiles reads variables from dotenv files. Variables already present
// in the environment win. Missing files are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.files = append(o.files, paths...) }
}

// WithEnviron replaces the process environment as the variable source.
func WithEnviron(environ map[string]string) Option {
	return func(o *options) { o.environ = environ }
}

// WithPrefix prepends prefix to every variable name looked up.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load parses the environment into a new T using its env struct tags.
// By default it reads the process environment plus an optional ./.env file.
//
//	type Config struct {
//		DSN string `env:"PG_CONN_URL,required"`
//	}
//	cfg, err := config.Load[Config]()
func Load[T any](opts ...Option) (T, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.environ == nil {
		o.environ = processEnviron()
		if o.files == nil {
			o.files = []string{".env"}
		}
	}

	for _, path := range o.files {
		vars, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			var zero T
			return zero, errors.Join(ErrReadEnvFile, fmt.Errorf("%s: %w", path, err))
		}
		for k, v := range vars {
			if _, ok := o.environ[k]; !ok {
				o.environ[k] = v
			}
		}
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Environment: o.environ,
		Prefix:      o.prefix,
	})
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error. Use it only during startup.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}

func processEnviron() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
