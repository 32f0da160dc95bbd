package main

import (
	"github.com/dmitrymomot/billingkit/pkg/httpserver"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/metrics"
	"github.com/dmitrymomot/billingkit/pkg/pg"
	"github.com/dmitrymomot/billingkit/pkg/ratelimiter"
	"github.com/dmitrymomot/billingkit/pkg/redis"
)

const (
	backendPostgres = "postgres"
	backendRedis    = "redis"
)

// appConfig is the full environment of the billing binary.
type appConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Name string `env:"APP_NAME" envDefault:"billing"`

	UsageBackend    string `env:"USAGE_BACKEND" envDefault:"postgres"`
	PlanCatalogPath string `env:"PLAN_CATALOG_PATH"`
	PeriodCacheSize int    `env:"USAGE_PERIOD_CACHE_SIZE" envDefault:"1024"`
	JWTSecret       string `env:"BILLING_JWT_SECRET"`

	Counters   counterConfig
	RedeemRate ratelimiter.Config

	Postgres pg.Config
	Redis    redis.Config
	HTTP     httpserver.Config
	Log      logger.Config
	Metrics  metrics.Config
}

// counterConfig names the application tables counted for snapshot
// resources. An empty table leaves the resource without a counter.
type counterConfig struct {
	ProjectsTable    string `env:"USAGE_COUNT_TABLE_PROJECTS"`
	AutomationsTable string `env:"USAGE_COUNT_TABLE_AUTOMATIONS"`
	CustomersTable   string `env:"USAGE_COUNT_TABLE_CUSTOMERS"`
	OrgColumn        string `env:"USAGE_COUNT_ORG_COLUMN" envDefault:"organization_id"`
	Where            string `env:"USAGE_COUNT_WHERE"`
}
