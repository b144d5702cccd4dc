// api/handlers/stats_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"topicquiz/api/utils"
)

// StatsHandlers serves time-windowed statistics from the ClickHouse mirror.
type StatsHandlers struct {
	Events ResponseEvents
	Now    func() time.Time
}

func NewStatsHandlers(events ResponseEvents) *StatsHandlers {
	return &StatsHandlers{
		Events: events,
		Now:    time.Now,
	}
}

// window parses start/end and writes the error response itself when the
// request cannot proceed.
func (h *StatsHandlers) window(c *gin.Context) (time.Time, time.Time, bool) {
	if h.Events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Time-series statistics are not configured"})
		return time.Time{}, time.Time{}, false
	}
	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), h.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *StatsHandlers) GetResponseCountsOverTime(c *gin.Context) {
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}
	if !utils.IsValidInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interval. Use one of Minute, Hour, Day, Week, Month, Quarter, Year"})
		return
	}

	start, end, ok := h.window(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Events.GetResponseCountsOverTime(ctx, interval, start, end, c.Query("topic"))
	if err != nil {
		log.Printf("Error getting response counts over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve response statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) GetAverageTimeSpent(c *gin.Context) {
	start, end, ok := h.window(c)
	if !ok {
		return
	}
	topic := c.Query("topic")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	avg, err := h.Events.GetAverageTimeSpent(ctx, topic, start, end)
	if err != nil {
		log.Printf("Error getting average time spent: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve average time statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topic":                   topic,
		"startDate":               start.Format(time.RFC3339),
		"endDate":                 end.Format(time.RFC3339),
		"averageTimeSpentSeconds": avg,
	})
}

func (h *StatsHandlers) GetTopicSuccess(c *gin.Context) {
	var limit uint64 = 10
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.ParseUint(limitParam, 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	start, end, ok := h.window(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Events.GetTopicSuccess(ctx, start, end, limit)
	if err != nil {
		log.Printf("Error getting topic success: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve topic success statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}
