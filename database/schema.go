package database

import (
	"context"
	"fmt"
	"time"
)

// CreateSchema creates the session and response tables.
// Safe to call multiple times - uses IF NOT EXISTS.
func (c *DBClient) CreateSchema() error {
	statements := postgresSchema
	if c.Dialect == DialectSQLite {
		statements = sqliteSchema
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range statements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		percentage DECIMAL(5,2) NOT NULL,
		duration_seconds INTEGER NOT NULL,
		user_ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_created_at ON game_sessions(created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS game_responses (
		id BIGSERIAL PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
		topic TEXT NOT NULL,
		is_cs_related BOOLEAN NOT NULL,
		was_selected BOOLEAN NOT NULL,
		is_correct BOOLEAN NOT NULL,
		time_spent_seconds INTEGER NOT NULL,
		question_order INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_game_responses_session_id ON game_responses(session_id, question_order);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		percentage REAL NOT NULL,
		duration_seconds INTEGER NOT NULL,
		user_ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_created_at ON game_sessions(created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS game_responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
		topic TEXT NOT NULL,
		is_cs_related INTEGER NOT NULL,
		was_selected INTEGER NOT NULL,
		is_correct INTEGER NOT NULL,
		time_spent_seconds INTEGER NOT NULL,
		question_order INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_game_responses_session_id ON game_responses(session_id, question_order);`,
}
