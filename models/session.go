// api/models/session.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is one completed playthrough, as read back from the record store.
type Session struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	Responses       []Response      `json:"responses"`
	TotalQuestions  int             `json:"total_questions"`
	CorrectAnswers  int             `json:"correct_answers"`
	Percentage      decimal.Decimal `json:"percentage"`
	DurationSeconds int             `json:"duration_seconds"`
	UserIP          string          `json:"user_ip"`
	UserAgent       string          `json:"user_agent"`
}

// Response is a single answer within a session.
type Response struct {
	Topic            string `json:"topic"`
	IsDomainRelevant bool   `json:"is_cs_related"`
	WasSelected      bool   `json:"was_selected"`
	IsCorrect        bool   `json:"is_correct"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
	Order            int    `json:"question_order"`
}

// NewSession holds the columns written when a session is first recorded.
type NewSession struct {
	CreatedAt       time.Time
	TotalQuestions  int
	CorrectAnswers  int
	Percentage      decimal.Decimal
	DurationSeconds int
	UserIP          string
	UserAgent       string
}

// SessionStats summarises a submitted answer sheet.
type SessionStats struct {
	TotalQuestions int             `json:"total_questions"`
	CorrectAnswers int             `json:"correct_answers"`
	Percentage     decimal.Decimal `json:"percentage"`
}
