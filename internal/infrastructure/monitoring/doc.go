/*
Package monitoring provides Prometheus metrics for the app server.

# Overview

Metrics cover three areas: HTTP traffic (labelled by route template, never
by app name), lifecycle manager operations (calls, latency, failures by
error kind), and storage transitions (creates, thaws, freezes, skipped
freezes, codec throughput, active/cold population).

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "freeze")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
