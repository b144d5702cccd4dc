// api/handlers/analysis_handlers.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"topicquiz/api/analysis"
	"topicquiz/api/metrics"
	"topicquiz/api/topics"
)

// CSVFileName is the attachment name of the CSV download.
const CSVFileName = "analise_respostas_completa.csv"

const defaultMostClicked = 10

type AnalysisHandlers struct {
	Sessions SessionRepository
	Universe *topics.Universe
	// Cache may be nil, in which case every request rebuilds the report.
	Cache *analysis.Cache
}

func NewAnalysisHandlers(sessions SessionRepository, universe *topics.Universe, cache *analysis.Cache) *AnalysisHandlers {
	return &AnalysisHandlers{
		Sessions: sessions,
		Universe: universe,
		Cache:    cache,
	}
}

// report returns the analysis of the current history, reusing a cached
// report while the store is unchanged.
func (h *AnalysisHandlers) report(ctx context.Context) (*analysis.Report, error) {
	version, err := h.Sessions.SnapshotVersion(ctx)
	if err != nil {
		return nil, err
	}

	build := func() (*analysis.Report, error) {
		started := time.Now()
		sessions, err := h.Sessions.FetchSessionsWithResponses(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch session history: %w", err)
		}
		r := analysis.Build(version, sessions, h.Universe)
		metrics.AnalysisBuildDuration.Observe(time.Since(started).Seconds())
		metrics.AnalysisSessions.Set(float64(len(r.Rows)))
		log.Printf("Analysis rebuilt: %d sessions, %d topics with appearances", len(r.Rows), len(r.Statistics))
		return r, nil
	}

	if h.Cache == nil {
		return build()
	}
	r, hit, err := h.Cache.Get(version, build)
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.AnalysisCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.AnalysisCacheLookups.WithLabelValues("miss").Inc()
	}
	return r, nil
}

func (h *AnalysisHandlers) serve(c *gin.Context, format analysis.Format) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	r, err := h.report(ctx)
	if err != nil {
		log.Printf("Error building analysis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build analysis", "details": err.Error()})
		return
	}

	body, err := analysis.Export(format, r.Rows, r.Statistics)
	if err != nil {
		log.Printf("Error exporting analysis as %s: %v", format, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export analysis"})
		return
	}

	metrics.Exports.WithLabelValues(string(format)).Inc()
	if format == analysis.FormatCSV {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, CSVFileName))
	}
	c.Data(http.StatusOK, format.ContentType(), body)
}

// GetAnalysis serves the structured analysis document. The format query
// parameter selects json (default), yaml or csv.
func (h *AnalysisHandlers) GetAnalysis(c *gin.Context) {
	format, err := analysis.ParseFormat(c.Query("format"))
	if err != nil {
		if errors.Is(err, analysis.ErrUnknownFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'format' parameter. Use json, yaml or csv."})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.serve(c, format)
}

// DownloadCSV serves the dense table as a CSV attachment.
func (h *AnalysisHandlers) DownloadCSV(c *gin.Context) {
	h.serve(c, analysis.FormatCSV)
}

// GetTopicStats returns the per-topic statistics ranked hardest first,
// plus the most clicked topics.
func (h *AnalysisHandlers) GetTopicStats(c *gin.Context) {
	top := defaultMostClicked
	if topParam := c.Query("top"); topParam != "" {
		parsed, err := strconv.Atoi(topParam)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'top' parameter. Must be a positive integer."})
			return
		}
		top = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	r, err := h.report(ctx)
	if err != nil {
		log.Printf("Error building analysis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build analysis", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_sessions":     len(r.Rows),
		"difficulty_ranking": r.Ranking,
		"most_clicked":       analysis.MostClicked(r.Statistics, top),
	})
}
