// api/store/response_events.go
package store

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"topicquiz/api/database"
	"topicquiz/api/models"
	"topicquiz/api/utils"
)

// ResponseEventStore mirrors recorded responses into ClickHouse for
// time-series queries.
type ResponseEventStore struct {
	DB *database.ClickHouseClient
}

type ResponseCountByTime struct {
	Time    time.Time `json:"time"`
	Topic   *string   `json:"topic,omitempty"`
	Count   uint64    `json:"count"`
	Correct uint64    `json:"correct"`
}

func NewResponseEventStore(chClient *database.ClickHouseClient) *ResponseEventStore {
	return &ResponseEventStore{
		DB: chClient,
	}
}

// EventsFromSession expands a stored session into one event per response.
func EventsFromSession(session *models.Session) []models.ResponseEvent {
	events := make([]models.ResponseEvent, 0, len(session.Responses))
	for _, r := range session.Responses {
		events = append(events, models.ResponseEvent{
			EventID:          uuid.New().String(),
			SessionID:        session.ID,
			Timestamp:        session.CreatedAt,
			Topic:            r.Topic,
			IsDomainRelevant: r.IsDomainRelevant,
			WasSelected:      r.WasSelected,
			IsCorrect:        r.IsCorrect,
			TimeSpentSeconds: r.TimeSpentSeconds,
			QuestionOrder:    r.Order,
			UserIP:           session.UserIP,
		})
	}
	return events
}

func (s *ResponseEventStore) InsertResponseEvents(ctx context.Context, events []models.ResponseEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column names and their order must match quiz_response_events.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO quiz_response_events (
			event_id, session_id, timestamp, topic, is_domain_relevant, was_selected,
			is_correct, time_spent_seconds, question_order, user_ip
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.SessionID,
			event.Timestamp,
			event.Topic,
			event.IsDomainRelevant,
			event.WasSelected,
			event.IsCorrect,
			int32(event.TimeSpentSeconds),
			int32(event.QuestionOrder),
			event.UserIP,
		)
		if err != nil {
			log.Printf("Error appending response event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Successfully inserted %d response events.", len(events))
	return nil
}

func (s *ResponseEventStore) GetResponseCountsOverTime(ctx context.Context, interval string, start, end time.Time, topicFilter string) ([]ResponseCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) AS time_bucket, count() AS total, countIf(is_correct) AS correct", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	isFilteringByTopic := topicFilter != ""

	if isFilteringByTopic {
		selectCols += ", topic"
		groupByCols += ", topic"
		whereClause += " AND topic = ?"
		args = append(args, topicFilter)
		orderByCols += ", topic ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM quiz_response_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query response counts over time: %w", err)
	}
	defer rows.Close()

	results := []ResponseCountByTime{}
	for rows.Next() {
		var (
			current ResponseCountByTime
			topic   string
		)
		if isFilteringByTopic {
			if err := rows.Scan(&current.Time, &current.Count, &current.Correct, &topic); err != nil {
				log.Printf("Error scanning row for response counts over time (with topic filter): %v", err)
				continue
			}
			current.Topic = &topic
		} else {
			if err := rows.Scan(&current.Time, &current.Count, &current.Correct); err != nil {
				log.Printf("Error scanning row for response counts over time: %v", err)
				continue
			}
		}
		results = append(results, current)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during response counts over time query: %w", err)
	}
	return results, nil
}

func (s *ResponseEventStore) GetAverageTimeSpent(ctx context.Context, topicFilter string, start, end time.Time) (float64, error) {
	query := `SELECT avg(time_spent_seconds) FROM quiz_response_events WHERE timestamp >= ? AND timestamp <= ?`
	args := []interface{}{start, end}

	if topicFilter != "" {
		query += ` AND topic = ?`
		args = append(args, topicFilter)
	}

	var avgTime float64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&avgTime); err != nil {
		return 0.0, fmt.Errorf("failed to query average time spent: %w", err)
	}

	// avg() over no rows is NaN, which encoding/json rejects.
	if math.IsNaN(avgTime) {
		return 0.0, nil
	}
	return avgTime, nil
}

func (s *ResponseEventStore) GetTopicSuccess(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopicSuccessResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT topic, count() AS total, countIf(is_correct) AS correct
		FROM quiz_response_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY topic
		ORDER BY correct / total ASC, topic ASC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic success: %w", err)
	}
	defer rows.Close()

	results := []models.TopicSuccessResult{}
	for rows.Next() {
		var r models.TopicSuccessResult
		if err := rows.Scan(&r.Topic, &r.Total, &r.Correct); err != nil {
			log.Printf("Error scanning row for topic success: %v", err)
			continue
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for topic success: %w", err)
	}
	return results, nil
}
