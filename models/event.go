// api/models/event.go
package models

import (
	"time"
)

// RegisterRequest is the payload the game posts once a round is finished.
type RegisterRequest struct {
	Timestamp time.Time          `json:"timestamp" binding:"required"`
	Responses []AnswerSubmission `json:"responses" binding:"required,min=1,dive"`
}

// AnswerSubmission is one answer as reported by the game client.
type AnswerSubmission struct {
	Topic       string `json:"topic"`
	IsCSRelated bool   `json:"isCSRelated"`
	Selected    bool   `json:"selected"`
	Correct     bool   `json:"correct"`
	TimeSpent   int    `json:"timeSpent"`
}

// ResponseEvent is a recorded response mirrored to the analytics store.
type ResponseEvent struct {
	EventID          string    `json:"eventId"`
	SessionID        string    `json:"sessionId"`
	Timestamp        time.Time `json:"timestamp"`
	Topic            string    `json:"topic"`
	IsDomainRelevant bool      `json:"isDomainRelevant"`
	WasSelected      bool      `json:"wasSelected"`
	IsCorrect        bool      `json:"isCorrect"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	QuestionOrder    int       `json:"questionOrder"`
	UserIP           string    `json:"userIp"`
}

type TopicSuccessResult struct {
	Topic   string `json:"topic"`
	Total   uint64 `json:"total"`
	Correct uint64 `json:"correct"`
}
