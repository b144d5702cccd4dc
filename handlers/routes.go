package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r *gin.Engine, sessions *SessionHandlers, analyses *AnalysisHandlers, stats *StatsHandlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// legacy path still posted by deployed game clients
	r.POST("/registrar", sessions.RegisterSession)

	api := r.Group("/api")
	{
		api.GET("/test-db", sessions.TestDB)
		api.POST("/sessions", sessions.RegisterSession)
		api.GET("/sessions/:id", sessions.GetSession)
		api.GET("/analytics", sessions.RecentSessions)

		api.GET("/analysis", analyses.GetAnalysis)
		api.GET("/analysis/csv", analyses.DownloadCSV)
		api.GET("/topic-stats", analyses.GetTopicStats)

		statsGroup := api.Group("/stats")
		{
			statsGroup.GET("/response-counts", stats.GetResponseCountsOverTime)
			statsGroup.GET("/average-time", stats.GetAverageTimeSpent)
			statsGroup.GET("/topic-success", stats.GetTopicSuccess)
		}
	}
}
