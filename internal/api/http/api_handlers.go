package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/lifecycle"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/resilience"
)

// ListApps lists every app with its storage tier
func (h *Handlers) ListApps(c *gin.Context) {
	apps, err := h.apps.List(c.Request.Context())
	if err != nil {
		h.failJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"apps":  apps,
		"count": len(apps),
	})
}

// GetApp reports the state of one app
func (h *Handlers) GetApp(c *gin.Context) {
	name := c.Param("name")

	state, err := h.apps.State(c.Request.Context(), name)
	if err != nil {
		h.failJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":  name,
		"state": state,
	})
}

// Summarize describes an app's page, thawing it if needed
func (h *Handlers) Summarize(c *gin.Context) {
	name := c.Param("name")

	data, err := h.apps.ReadContent(c.Request.Context(), name)
	if err != nil {
		h.failJSON(c, err)
		return
	}

	summary, err := h.inspector.Summarize(data)
	if err != nil {
		h.failJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":    name,
		"summary": summary,
	})
}

// FreezeApp archives one app immediately
func (h *Handlers) FreezeApp(c *gin.Context) {
	name := c.Param("name")

	if err := h.apps.Freeze(c.Request.Context(), name); err != nil {
		h.failJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":  name,
		"state": lifecycle.StateCold,
	})
}

// FreezeAll archives every active app
func (h *Handlers) FreezeAll(c *gin.Context) {
	frozen, err := h.apps.FreezeAll(c.Request.Context())
	if err != nil {
		h.record(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"frozen": frozen,
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"frozen": frozen})
}

// Health reports service status and app counts. An open archive breaker
// marks the service degraded; reads still work.
func (h *Handlers) Health(c *gin.Context) {
	status := "healthy"
	body := gin.H{}

	apps, err := h.apps.List(c.Request.Context())
	if err != nil {
		status = "degraded"
		body["storage_error"] = err.Error()
	} else {
		active, cold := 0, 0
		for _, app := range apps {
			if app.State == lifecycle.StateActive {
				active++
			} else {
				cold++
			}
		}
		body["apps"] = gin.H{"active": active, "cold": cold}
	}

	if h.breaker != nil {
		state := h.breaker.State()
		body["archive_breaker"] = state.String()
		counts := h.breaker.Counts()
		body["archive_breaker_counts"] = gin.H{
			"requests":             counts.Requests,
			"failures":             counts.TotalFailures,
			"consecutive_failures": counts.ConsecutiveFailures,
		}
		if state == resilience.StateOpen {
			status = "degraded"
		}
	}

	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		body["uptime_seconds"] = h.metrics.UptimeSeconds()
		body["transitions"] = gin.H{
			"creates": snap.Creates,
			"thaws":   snap.Thaws,
			"freezes": snap.Freezes,
		}
		body["requests"] = gin.H{
			"total":           snap.TotalRequests,
			"errors":          snap.TotalErrors,
			"average_latency": snap.AverageLatency().String(),
		}
	}

	body["status"] = status
	c.JSON(http.StatusOK, body)
}

// Metrics serves the Prometheus exposition format
func (h *Handlers) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
