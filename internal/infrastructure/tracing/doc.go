/*
Package tracing gives every HTTP request a trace and span ID.

IDs are ULIDs from the id package. An incoming X-Trace-ID is continued and
an incoming X-Span-ID becomes the parent; both are echoed on the response.
Finished spans go through a buffered channel to a collector goroutine that
writes them to the zap logger, so a slow log sink never blocks a request.

	tracer := tracing.New("glitchly", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

Handlers use Logger(ctx, base) to tag their log lines with the trace ID.
*/
package tracing
