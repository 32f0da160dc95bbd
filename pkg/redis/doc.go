// Package redis connects to Redis for the billing usage store.
//
// Config is populated from REDIS_* environment variables. Connect retries
// until the server answers a PING or ConnectTimeout elapses:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := usage.NewRedisStore(client, cfg.KeyPrefix)
//
// Key builds namespaced keys and Healthcheck adapts a client to the
// readiness check signature used by the HTTP server.
package redis
