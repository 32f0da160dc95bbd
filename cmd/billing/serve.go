package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/environment"
	"github.com/dmitrymomot/billingkit/pkg/httpserver"
	"github.com/dmitrymomot/billingkit/pkg/jwt"
	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/metrics"
	"github.com/dmitrymomot/billingkit/pkg/organization"
	"github.com/dmitrymomot/billingkit/pkg/pg"
	"github.com/dmitrymomot/billingkit/pkg/quota"
	"github.com/dmitrymomot/billingkit/pkg/ratelimiter"
	"github.com/dmitrymomot/billingkit/pkg/redemption"
	"github.com/dmitrymomot/billingkit/pkg/redis"
	"github.com/dmitrymomot/billingkit/pkg/usage"
)

func serve(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	catalog, err := limits.LoadCatalogFile(cfg.PlanCatalogPath)
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}

	var (
		usageStore usage.Store
		rateStore  ratelimiter.Store
	)
	switch cfg.UsageBackend {
	case backendPostgres:
		usageStore = usage.NewPGStore(pool)
		mem := ratelimiter.NewMemoryStore()
		defer mem.Close()
		rateStore = mem
	case backendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		usageStore = usage.NewRedisStore(client, cfg.Redis.KeyPrefix)
		rateStore = ratelimiter.NewRedisStore(client, cfg.Redis.KeyPrefix)
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	default:
		return fmt.Errorf("unknown USAGE_BACKEND %q", cfg.UsageBackend)
	}

	redeemLimiter, err := ratelimiter.NewBucket(rateStore, cfg.RedeemRate)
	if err != nil {
		return err
	}

	m := metrics.New(cfg.Metrics)
	env := environment.Parse(cfg.Env)

	usageOpts := []usage.ServiceOption{
		usage.WithLogger(log),
		usage.WithPeriodCache(cfg.PeriodCacheSize),
	}

	svc := billing.NewService(
		organization.NewPGStore(pool),
		quota.NewResolver(catalog, quota.WithResolverLogger(log)),
		usage.NewService(usageStore, counters(pool, cfg.Counters), usageOpts...),
		redemption.NewEngine(redemption.NewPGStore(pool), redemption.WithLogger(log)),
		billing.WithLogger(log),
		billing.WithMetrics(m),
	)

	handlerOpts := []billing.HandlerOption{
		billing.WithHandlerLogger(log),
		billing.WithEnvironment(env),
		billing.WithHandlerMetrics(m),
		billing.WithReadinessChecks(checks...),
		billing.WithRedeemLimiter(redeemLimiter),
	}
	if len(cfg.HTTP.CORSOrigins) > 0 {
		handlerOpts = append(handlerOpts, billing.WithCORS(cfg.HTTP.CORSOrigins...))
	}
	if cfg.JWTSecret != "" {
		auth, err := jwt.New(cfg.JWTSecret, jwt.WithIssuer(cfg.Name))
		if err != nil {
			return err
		}
		handlerOpts = append(handlerOpts, billing.WithAuth(auth))
	} else if env.IsProduction() {
		log.WarnContext(ctx, "BILLING_JWT_SECRET is empty, organization routes are unauthenticated")
	}

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithListenCallback(func(addr string) {
			log.InfoContext(ctx, "billing api listening",
				slog.String("addr", addr),
				slog.String("usage_backend", cfg.UsageBackend),
				logger.Component("http"),
			)
		}),
	)
	return srv.Run(ctx, billing.NewHandler(svc, handlerOpts...))
}

func counters(pool *pgxpool.Pool, cfg counterConfig) usage.CounterRegistry {
	reg := usage.NewRegistry()
	tables := []struct {
		res   limits.Resource
		table string
	}{
		{limits.ResourceProjects, cfg.ProjectsTable},
		{limits.ResourceAutomations, cfg.AutomationsTable},
		{limits.ResourceCustomers, cfg.CustomersTable},
	}
	for _, t := range tables {
		if t.table == "" {
			continue
		}
		reg.Register(t.res, usage.TableCounter(pool, t.table, cfg.OrgColumn, cfg.Where))
	}
	return reg
}
