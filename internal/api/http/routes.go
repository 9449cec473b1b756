package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/glitchly/backend/internal/api/middleware"
)

// Register mounts every route. bodyLimit caps save requests; the extra
// headroom over the content limit covers form encoding.
func (h *Handlers) Register(router *gin.Engine, bodyLimit int64, withMetrics bool) {
	router.SetHTMLTemplate(Templates())

	router.GET("/", h.Home)
	router.GET("/health", h.Health)
	router.GET("/favicon.ico", h.Favicon)
	if withMetrics {
		router.GET("/metrics", h.Metrics())
	}

	api := router.Group("/api")
	{
		api.GET("/apps", h.ListApps)
		api.GET("/apps/:name", h.GetApp)
		api.GET("/apps/:name/summary", h.Summarize)
		api.POST("/apps/:name/freeze", h.FreezeApp)
		api.POST("/freeze", h.FreezeAll)
	}

	router.GET("/edit/:name", h.Edit)
	router.POST("/edit/:name", middleware.MaxBody(bodyLimit), h.Save)
	router.GET("/:name", h.View)
}
