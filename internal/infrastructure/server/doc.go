// Package server wires the Glitchly HTTP service together.
//
// NewServer builds, in order:
//  1. Logger from LOG_LEVEL / LOG_DEV
//  2. Prometheus registry and metrics
//  3. Tracer
//  4. Lifecycle manager, followed by startup recovery of both storage roots
//  5. Gin router with recovery, tracing, metrics, request logging, CORS
//     and rate limiting middleware, then the routes
//
// Close drains HTTP requests, optionally freezes every active app, and
// settles background freezes before syncing the logger.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Close(ctx)
package server
