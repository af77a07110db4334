package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/barcodeprint/backend/internal/interfaces/http/router"
)

// BarcodeRoutes builds the /barcodes group. mutating wraps the routes that
// create or delete records (typically the Idempotency middleware).
func BarcodeRoutes(h *BarcodeHandler, mutating ...gin.HandlerFunc) *router.DomainGroup {
	g := router.NewDomainGroup("barcodes", "/barcodes")

	g.GET("", h.List)
	g.GET("/count", h.Count)
	g.GET("/lookup", h.Lookup)
	g.GET("/:id", h.Get)
	g.GET("/:id/image", h.Image)
	g.PATCH("/:id/title", h.Rename)
	g.DELETE("/:id", h.Delete)
	g.POST("/generate", withMiddleware(h.Generate, mutating)...)
	g.POST("/batch-delete", withMiddleware(h.BatchDelete, mutating)...)

	return g
}

// PrintRoutes builds the /print group. render wraps the two endpoints that
// start a render (rate limiting, idempotency).
func PrintRoutes(h *PrintHandler, render ...gin.HandlerFunc) *router.DomainGroup {
	g := router.NewDomainGroup("print", "/print")

	g.GET("/settings/defaults", h.GetSettingsDefaults)
	g.GET("/paper-sizes", h.GetPaperSizes)
	g.POST("/export", withMiddleware(h.Export, render)...)
	g.POST("/labels", withMiddleware(h.PrintLabels, render)...)

	jobs := g.Group("jobs", "/jobs")
	jobs.GET("", h.ListJobs)
	jobs.GET("/:id", h.GetJob)
	jobs.GET("/:id/download", h.Download)

	return g
}

func withMiddleware(handler gin.HandlerFunc, middleware []gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(middleware)+1)
	chain = append(chain, middleware...)
	return append(chain, handler)
}
