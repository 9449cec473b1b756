package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/inspect"
	"github.com/GriffinCanCode/glitchly/backend/internal/domain/lifecycle"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/utils"
)

// Lifecycle is the storage behavior the handlers depend on
type Lifecycle interface {
	EnsureActive(ctx context.Context, name string) (*lifecycle.Content, error)
	ReadContent(ctx context.Context, name string) ([]byte, error)
	WriteContent(ctx context.Context, name string, data []byte) error
	Freeze(ctx context.Context, name string) error
	FreezeAll(ctx context.Context) (int, error)
	State(ctx context.Context, name string) (lifecycle.State, error)
	List(ctx context.Context) ([]lifecycle.AppInfo, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	apps      Lifecycle
	inspector *inspect.Inspector
	metrics   *monitoring.Metrics
	gatherer  prometheus.Gatherer
	breaker   *resilience.Breaker
	hasher    *utils.Hasher
	logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(apps Lifecycle, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		apps:      apps,
		inspector: inspect.New(),
		metrics:   metrics,
		gatherer:  prometheus.DefaultGatherer,
		hasher:    utils.DefaultHasher(),
		logger:    logger,
	}
}

// WithGatherer sets the registry served on /metrics
func (h *Handlers) WithGatherer(g prometheus.Gatherer) *Handlers {
	if g != nil {
		h.gatherer = g
	}
	return h
}

// WithBreaker reports the archive breaker on /health
func (h *Handlers) WithBreaker(b *resilience.Breaker) *Handlers {
	h.breaker = b
	return h
}

// saveRequest is bound from a form post or a JSON body
type saveRequest struct {
	Code string `form:"code" json:"code"`
}

// Home serves the landing page
func (h *Handlers) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

// View serves an app's page, thawing it if needed
func (h *Handlers) View(c *gin.Context) {
	name := c.Param("name")

	data, err := h.apps.ReadContent(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}

	etag := h.hasher.ETag(data)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, inspect.ContentType(data), data)
}

// Edit serves the editor, creating the app when it does not exist
func (h *Handlers) Edit(c *gin.Context) {
	name := c.Param("name")

	content, err := h.apps.EnsureActive(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "edit.html", gin.H{
		"Name":    content.Name,
		"Code":    string(content.Data),
		"Created": content.Created,
		"Thawed":  content.Thawed,
	})
}

// Save stores the posted code and redirects back to the editor
func (h *Handlers) Save(c *gin.Context) {
	name := c.Param("name")

	var req saveRequest
	if err := c.ShouldBind(&req); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			h.fail(c, err)
			return
		}
		_ = c.Error(err)
		c.String(http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.apps.WriteContent(c.Request.Context(), name, []byte(req.Code)); err != nil {
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/edit/"+name)
}

// Favicon keeps browsers' automatic requests out of the app namespace
func (h *Handlers) Favicon(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
