package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the study-agent tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			original_name TEXT NOT NULL,
			storage_key TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			is_sample BOOLEAN NOT NULL DEFAULT FALSE,
			upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS document_chunks (
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			chunk_index INT NOT NULL,
			page_number INT NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (document_id, chunk_index)
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			document_ids TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			citations JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id UUID PRIMARY KEY,
			document_id TEXT NOT NULL,
			quiz_type TEXT NOT NULL,
			questions JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_attempts (
			id UUID PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			answers JSONB NOT NULL,
			score INT NOT NULL,
			total_questions INT NOT NULL,
			attempted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS app_sentinels (
			name TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, last_updated DESC)",
		"CREATE INDEX IF NOT EXISTS idx_chat_messages_chat ON chat_messages(chat_id, id)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts(user_id, attempted_at DESC)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
