package handlers

import (
	"context"
	"time"

	"topicquiz/api/models"
	"topicquiz/api/store"
)

// SessionRepository is the record store the handlers read and write.
// *store.SessionStore implements it.
type SessionRepository interface {
	InsertSession(ctx context.Context, data models.NewSession) (*models.Session, error)
	InsertResponses(ctx context.Context, sessionID string, responses []models.Response) error
	FetchSessionsWithResponses(ctx context.Context) ([]models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RecentSessions(ctx context.Context, limit int) ([]models.Session, error)
	CountSessions(ctx context.Context) (int, error)
	SnapshotVersion(ctx context.Context) (string, error)
}

// ResponseEvents is the ClickHouse response mirror.
// *store.ResponseEventStore implements it.
type ResponseEvents interface {
	InsertResponseEvents(ctx context.Context, events []models.ResponseEvent) error
	GetResponseCountsOverTime(ctx context.Context, interval string, start, end time.Time, topicFilter string) ([]store.ResponseCountByTime, error)
	GetAverageTimeSpent(ctx context.Context, topicFilter string, start, end time.Time) (float64, error)
	GetTopicSuccess(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopicSuccessResult, error)
}
