package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API on router. Global middleware is expected
// to be installed already.
func SetupRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	{
		api.GET("/examples", h.ListExamples)
		api.POST("/examples/:example/session", h.CreateSession)
		api.POST("/documents", h.UploadDocument)
		api.GET("/shareable-ids/:id", h.ResolveShareableID)
		api.POST("/cover-image-token", h.CoverImageToken)
		api.POST("/processing-token", h.ProcessingToken)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}
