package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// InitRoutes registers the reporting endpoints on the given Gin engine.
func InitRoutes(e *gin.Engine, h *transactionsHandler) {
	g := e.Group("/api")
	g.POST("/init", h.handleInit)
	g.GET("/transactions", h.handleListTransactions)
	g.GET("/statistics", h.handleStatistics)
	g.GET("/bar-chart", h.handleBarChart)
	g.GET("/pie-chart", h.handlePieChart)
	g.GET("/combined", h.handleCombined)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
