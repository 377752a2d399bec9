package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "market-analyzer"

// NewRouter builds the gin engine with middleware and every API route.
func NewRouter(h *Handlers) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(), otelgin.Middleware(serviceName))
	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	SetupRoutes(router, h)
	return router
}

func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/imports", h.Imports)
	router.DELETE("/delete/:id", h.Delete)
	router.GET("/nodes/:id", h.Node)
	router.GET("/sales", h.Sales)
	router.GET("/node/:id/statistic", h.Statistic)
}
