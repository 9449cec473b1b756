package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GriffinCanCode/glitchly/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.True(t, id.IsValid(string(root.SpanID)[len("span_"):]))
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
	assert.Equal(t, root.TraceID, GetTraceID(childCtx))
}

func TestLoggerAnnotatesTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())
	defer tracer.Close()

	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	Logger(context.Background(), base).Info("untraced")
	span, ctx := tracer.StartSpan(context.Background(), "op")
	Logger(ctx, base).Info("traced")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, string(span.TraceID), entries[1].ContextMap()["trace_id"])
	assert.Equal(t, string(span.SpanID), entries[1].ContextMap()["span_id"])
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	tracer := New("test", zap.New(core))

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/:name", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/demo", nil)
	req.Header.Set(TraceHeader, "trace-from-client")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, TraceID("trace-from-client"), seen)
	assert.Equal(t, "trace-from-client", w.Header().Get(TraceHeader))
	assert.NotEmpty(t, w.Header().Get(SpanHeader))

	tracer.Close()
	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET /:name", fields["operation"])
	assert.Equal(t, "demo", fields["app"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	tracer := New("test", zap.NewNop())
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	assert.NotPanics(t, func() { tracer.Submit(span) })
}
