package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/lifecycle"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/utils"
)

// NotFoundMessage is the body served for unknown apps
const NotFoundMessage = "App not found."

// statusFor maps a lifecycle error onto an HTTP status
func statusFor(err error) int {
	var (
		tooLarge *http.MaxBytesError
		invalid  *utils.ValidationError
	)
	switch {
	case errors.As(err, &tooLarge), isBodyTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &invalid) && invalid.Field == "content":
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Some binders flatten the MaxBytesError into text
func isBodyTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func (h *Handlers) message(status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return NotFoundMessage
	case http.StatusRequestEntityTooLarge:
		return "Content too large."
	default:
		return err.Error()
	}
}

// fail writes a plain text error for page routes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := h.record(c, err)
	c.String(status, h.message(status, err))
}

// failJSON writes a JSON error for API routes
func (h *Handlers) failJSON(c *gin.Context, err error) {
	status := h.record(c, err)
	c.JSON(status, gin.H{
		"error": h.message(status, err),
		"kind":  lifecycle.KindOf(err).String(),
	})
}

func (h *Handlers) record(c *gin.Context, err error) int {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		tracing.Logger(c.Request.Context(), h.logger).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", lifecycle.KindOf(err).String()),
			zap.Error(err))
	}
	return status
}
