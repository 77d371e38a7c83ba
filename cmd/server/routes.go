package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// callbackHandler is satisfied by *handler.Handler.
type callbackHandler interface {
	ServeGin(c *gin.Context)
}

func setupRoutes(router *gin.Engine, h callbackHandler, registry *prometheus.Registry) {
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	router.POST("/callback", h.ServeGin)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
