// Package httpserver runs the billing API with graceful shutdown and exposes
// liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run returns once ctx is cancelled or SIGINT/SIGTERM arrives and in-flight
// requests have drained or the shutdown timeout has elapsed.
package httpserver
