// api/handlers/session_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"topicquiz/api/analysis"
	"topicquiz/api/metrics"
	"topicquiz/api/models"
	"topicquiz/api/store"
	"topicquiz/api/topics"
	"topicquiz/api/utils"
)

const (
	// UnspecifiedTopic is stored when the client omits the topic.
	UnspecifiedTopic = "Tópico não informado"
	// DefaultTimeSpentSeconds is stored when the client omits the time spent.
	DefaultTimeSpentSeconds = 10
	maxUserAgentLength      = 500
	recentSessionsLimit     = 10
)

type SessionHandlers struct {
	Sessions SessionRepository
	// Events is nil when ClickHouse is not configured.
	Events   ResponseEvents
	Universe *topics.Universe
	Now      func() time.Time
}

func NewSessionHandlers(sessions SessionRepository, events ResponseEvents, universe *topics.Universe) *SessionHandlers {
	return &SessionHandlers{
		Sessions: sessions,
		Events:   events,
		Universe: universe,
		Now:      time.Now,
	}
}

// CalculateSessionStats counts correct answers and the rounded percentage.
func CalculateSessionStats(responses []models.AnswerSubmission) models.SessionStats {
	stats := models.SessionStats{TotalQuestions: len(responses), Percentage: decimal.Zero}
	for _, r := range responses {
		if r.Correct {
			stats.CorrectAnswers++
		}
	}
	if stats.TotalQuestions > 0 {
		stats.Percentage = decimal.NewFromInt(int64(stats.CorrectAnswers) * 100).
			DivRound(decimal.NewFromInt(int64(stats.TotalQuestions)), 0)
	}
	return stats
}

// ToResponses converts submitted answers into stored responses, numbering
// them in submission order.
func ToResponses(answers []models.AnswerSubmission) []models.Response {
	responses := make([]models.Response, 0, len(answers))
	for i, a := range answers {
		topic := a.Topic
		if topic == "" {
			topic = UnspecifiedTopic
		}
		timeSpent := a.TimeSpent
		if timeSpent <= 0 {
			timeSpent = DefaultTimeSpentSeconds
		}
		responses = append(responses, models.Response{
			Topic:            topic,
			IsDomainRelevant: a.IsCSRelated,
			WasSelected:      a.Selected,
			IsCorrect:        a.Correct,
			TimeSpentSeconds: timeSpent,
			Order:            i + 1,
		})
	}
	return responses
}

// RegisterSession records a finished game: one session row plus one row per
// answer.
func (h *SessionHandlers) RegisterSession(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid session payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Timestamp.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": "timestamp is required"})
		return
	}

	endTime := h.Now().UTC()
	durationSeconds := int(math.Round(endTime.Sub(req.Timestamp).Seconds()))
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	userIP := c.ClientIP()
	if userIP == "" {
		userIP = "unknown"
	}
	userAgent := c.GetHeader("User-Agent")
	if userAgent == "" {
		userAgent = "unknown"
	}

	stats := CalculateSessionStats(req.Responses)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	session, err := h.Sessions.InsertSession(ctx, models.NewSession{
		CreatedAt:       endTime,
		TotalQuestions:  stats.TotalQuestions,
		CorrectAnswers:  stats.CorrectAnswers,
		Percentage:      stats.Percentage,
		DurationSeconds: durationSeconds,
		UserIP:          userIP,
		UserAgent:       utils.Truncate(userAgent, maxUserAgentLength),
	})
	if err != nil {
		log.Printf("ERROR: Failed to create session: %v", err)
		metrics.RecordErrors.WithLabelValues("session").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session", "details": err.Error()})
		return
	}

	responses := ToResponses(req.Responses)
	if err := h.Sessions.InsertResponses(ctx, session.ID, responses); err != nil {
		log.Printf("ERROR: Failed to save responses for session %s: %v", session.ID, err)
		metrics.RecordErrors.WithLabelValues("responses").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to save responses",
			"details":   err.Error(),
			"sessionId": session.ID,
		})
		return
	}
	session.Responses = responses

	metrics.SessionsRecorded.Inc()
	metrics.ResponsesRecorded.Add(float64(len(responses)))

	if h.Events != nil {
		if err := h.Events.InsertResponseEvents(ctx, store.EventsFromSession(session)); err != nil {
			// the record store already holds the session; the mirror is best effort
			log.Printf("Error mirroring responses of session %s to ClickHouse: %v", session.ID, err)
			metrics.RecordErrors.WithLabelValues("mirror").Inc()
		}
	}

	log.Printf("Session recorded: ID=%s, Correct=%d/%d", session.ID, stats.CorrectAnswers, stats.TotalQuestions)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Session recorded successfully",
		"sessionId": session.ID,
		"stats":     stats,
		"timestamp": endTime.Format(time.RFC3339),
	})
}

// TestDB checks that the record store answers.
func (h *SessionHandlers) TestDB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := h.Sessions.CountSessions(ctx)
	if err != nil {
		log.Printf("Database connectivity check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connectivity error", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Database connected successfully",
		"totalSessions": count,
	})
}

// RecentSessions lists the latest sessions.
func (h *SessionHandlers) RecentSessions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sessions, err := h.Sessions.RecentSessions(ctx, recentSessionsLimit)
	if err != nil {
		log.Printf("Error fetching recent sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalSessions": len(sessions),
		"sessions":      sessions,
	})
}

// GetSession returns one session together with its dense row.
func (h *SessionHandlers) GetSession(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := h.Sessions.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		log.Printf("Error fetching session %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"row":     analysis.Aggregate(*session, h.Universe),
	})
}
