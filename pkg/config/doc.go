// Package config loads typed configuration from environment variables using
// caarlos0/env struct tags, optionally seeded from dotenv files.
//
// Each component owns its block (pg.Config, redis.Config, httpserver.Config)
// and the application composes them:
//
//	type AppConfig struct {
//		Env  string `env:"APP_ENV" envDefault:"development"`
//		PG   pg.Config
//		HTTP httpserver.Config
//	}
//	cfg, err := config.Load[AppConfig](config.WithEnvFiles(".env"))
package config
