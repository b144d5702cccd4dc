package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"topicquiz/api/database"
	"topicquiz/api/models"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// SessionStore reads and writes game sessions in the record store.
type SessionStore struct {
	db *database.DBClient
}

// NewSessionStore creates a new SessionStore instance.
func NewSessionStore(db *database.DBClient) *SessionStore {
	return &SessionStore{db: db}
}

// InsertSession records a new session and returns it with its generated ID.
func (s *SessionStore) InsertSession(ctx context.Context, data models.NewSession) (*models.Session, error) {
	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC().Truncate(time.Microsecond)

	session := &models.Session{
		ID:              uuid.New().String(),
		TotalQuestions:  data.TotalQuestions,
		CorrectAnswers:  data.CorrectAnswers,
		Percentage:      data.Percentage,
		DurationSeconds: data.DurationSeconds,
		UserIP:          data.UserIP,
		UserAgent:       data.UserAgent,
	}

	query := s.db.Rebind(`
		INSERT INTO game_sessions (id, created_at, total_questions, correct_answers, percentage, duration_seconds, user_ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at;
	`)
	var created timestamp
	err := s.db.DB.QueryRowContext(ctx, query,
		session.ID,
		createdAt,
		session.TotalQuestions,
		session.CorrectAnswers,
		session.Percentage,
		session.DurationSeconds,
		session.UserIP,
		session.UserAgent,
	).Scan(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.CreatedAt = created.Time

	log.Printf("Session created in DB: ID=%s, Questions=%d", session.ID, session.TotalQuestions)
	return session, nil
}

// InsertResponses stores the responses of a session in one transaction.
func (s *SessionStore) InsertResponses(ctx context.Context, sessionID string, responses []models.Response) error {
	if len(responses) == 0 {
		return nil
	}

	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.db.Rebind(`
		INSERT INTO game_responses (session_id, topic, is_cs_related, was_selected, is_correct, time_spent_seconds, question_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare response insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range responses {
		_, err := stmt.ExecContext(ctx,
			sessionID,
			r.Topic,
			r.IsDomainRelevant,
			r.WasSelected,
			r.IsCorrect,
			r.TimeSpentSeconds,
			r.Order,
		)
		if err != nil {
			return fmt.Errorf("failed to insert response %d for session %s: %w", r.Order, sessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit responses: %w", err)
	}

	log.Printf("Successfully inserted %d responses for session %s.", len(responses), sessionID)
	return nil
}

const sessionColumns = `id, created_at, total_questions, correct_answers, percentage, duration_seconds, user_ip, user_agent`

func scanSession(row interface{ Scan(...any) error }) (models.Session, error) {
	var (
		session models.Session
		created timestamp
	)
	err := row.Scan(
		&session.ID,
		&created,
		&session.TotalQuestions,
		&session.CorrectAnswers,
		&session.Percentage,
		&session.DurationSeconds,
		&session.UserIP,
		&session.UserAgent,
	)
	session.CreatedAt = created.Time
	return session, err
}

// FetchSessionsWithResponses returns every session, newest first, each with
// its responses in question order.
func (s *SessionStore) FetchSessionsWithResponses(ctx context.Context) ([]models.Session, error) {
	rows, err := s.db.DB.QueryContext(ctx, `SELECT `+sessionColumns+` FROM game_sessions ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	index := make(map[string]int)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session.Responses = []models.Response{}
		index[session.ID] = len(sessions)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during session query: %w", err)
	}

	responseRows, err := s.db.DB.QueryContext(ctx, `
		SELECT session_id, topic, is_cs_related, was_selected, is_correct, time_spent_seconds, question_order
		FROM game_responses
		ORDER BY session_id, question_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer responseRows.Close()

	for responseRows.Next() {
		var (
			sessionID string
			r         models.Response
		)
		if err := responseRows.Scan(&sessionID, &r.Topic, &r.IsDomainRelevant, &r.WasSelected, &r.IsCorrect, &r.TimeSpentSeconds, &r.Order); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		i, ok := index[sessionID]
		if !ok {
			// session inserted after the first query
			continue
		}
		sessions[i].Responses = append(sessions[i].Responses, r)
	}
	if err := responseRows.Err(); err != nil {
		return nil, fmt.Errorf("row error during response query: %w", err)
	}

	return sessions, nil
}

// GetSession returns one session with its responses.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := scanSession(s.db.DB.QueryRowContext(ctx,
		s.db.Rebind(`SELECT `+sessionColumns+` FROM game_sessions WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := s.db.DB.QueryContext(ctx, s.db.Rebind(`
		SELECT topic, is_cs_related, was_selected, is_correct, time_spent_seconds, question_order
		FROM game_responses
		WHERE session_id = ?
		ORDER BY question_order, id
	`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses for session %s: %w", id, err)
	}
	defer rows.Close()

	session.Responses = []models.Response{}
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.Topic, &r.IsDomainRelevant, &r.WasSelected, &r.IsCorrect, &r.TimeSpentSeconds, &r.Order); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		session.Responses = append(session.Responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during response query: %w", err)
	}
	return &session, nil
}

// RecentSessions returns the latest sessions without their responses.
func (s *SessionStore) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.DB.QueryContext(ctx,
		s.db.Rebind(`SELECT `+sessionColumns+` FROM game_sessions ORDER BY created_at DESC, id ASC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during recent sessions query: %w", err)
	}
	return sessions, nil
}

// CountSessions returns the number of recorded sessions.
func (s *SessionStore) CountSessions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// SnapshotVersion identifies the current contents of the store. It changes
// whenever a session or response is added.
func (s *SessionStore) SnapshotVersion(ctx context.Context) (string, error) {
	var (
		sessions, responses int
		latest              timestamp
	)
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM game_sessions),
			(SELECT COUNT(*) FROM game_responses),
			(SELECT MAX(created_at) FROM game_sessions)
	`).Scan(&sessions, &responses, &latest)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot version: %w", err)
	}

	stamp := ""
	if !latest.Time.IsZero() {
		stamp = latest.Time.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%d:%d:%s", sessions, responses, stamp), nil
}
