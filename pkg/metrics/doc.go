// Package metrics exposes billing activity as Prometheus metrics.
//
//	m := metrics.New(metrics.Config{Namespace: "billing"})
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
//
// Every recording method is safe to call on a nil *Metrics, so services can
// take metrics as an optional dependency.
package metrics
