package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabfab/study-agent/database"
	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgres ensures the schema exists and returns a store backed by pool.
// The store owns the pool and closes it in Close.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{pool: pool, logger: logger.OrNop(log)}, nil
}

func (s *Postgres) CreateDocument(ctx context.Context, doc *models.Document) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warn("rollback failed", "error", rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO documents (id, original_name, storage_key, content, is_sample, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, doc.ID, doc.OriginalName, doc.StorageKey, doc.Content, doc.IsSample, doc.UploadDate); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	batch := &pgx.Batch{}
	for _, chunk := range doc.Chunks {
		batch.Queue(`
			INSERT INTO document_chunks (document_id, chunk_index, page_number, text)
			VALUES ($1, $2, $3, $4)
		`, doc.ID, chunk.ChunkIndex, chunk.PageNumber, chunk.Text)
	}
	if batch.Len() > 0 {
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	docs, err := s.GetDocuments(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (s *Postgres) GetDocuments(ctx context.Context, ids []string) ([]models.Document, error) {
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []models.Document{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, original_name, storage_key, content, is_sample, upload_date
		FROM documents
		WHERE id = ANY($1::uuid[])
	`, valid)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	found := make(map[string]models.Document, len(valid))
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.OriginalName, &doc.StorageKey, &doc.Content, &doc.IsSample, &doc.UploadDate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Chunks = []models.Chunk{}
		found[doc.ID] = doc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	chunkRows, err := s.pool.Query(ctx, `
		SELECT document_id::text, chunk_index, page_number, text
		FROM document_chunks
		WHERE document_id = ANY($1::uuid[])
		ORDER BY document_id, chunk_index
	`, valid)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer chunkRows.Close()
	for chunkRows.Next() {
		var docID string
		var chunk models.Chunk
		if err := chunkRows.Scan(&docID, &chunk.ChunkIndex, &chunk.PageNumber, &chunk.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if doc, ok := found[docID]; ok {
			doc.Chunks = append(doc.Chunks, chunk)
			found[docID] = doc
		}
	}
	if err := chunkRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	return orderByIDs(found, canonical(ids)), nil
}

func (s *Postgres) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id::text, d.original_name, d.upload_date, d.is_sample, COUNT(c.chunk_index)
		FROM documents d
		LEFT JOIN document_chunks c ON c.document_id = d.id
		GROUP BY d.id
		ORDER BY d.upload_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.DocumentSummary, 0)
	for rows.Next() {
		var item models.DocumentSummary
		if err := rows.Scan(&item.ID, &item.OriginalName, &item.UploadDate, &item.IsSample, &item.PageCount); err != nil {
			return nil, fmt.Errorf("scan document summary: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateChat(ctx context.Context, chat *models.Chat) error {
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO chats (id, user_id, title, document_ids, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, chat.ID, chat.UserID, chat.Title, nonNilStrings(chat.DocumentIDs), chat.CreatedAt, chat.LastUpdated); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	if len(chat.Messages) > 0 {
		return s.AppendMessages(ctx, chat.ID, chat.Messages, chat.LastUpdated)
	}
	return nil
}

func (s *Postgres) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var chat models.Chat
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, user_id, title, document_ids, created_at, last_updated
		FROM chats WHERE id = $1
	`, id).Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.DocumentIDs, &chat.CreatedAt, &chat.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT role, content, citations, created_at
		FROM chat_messages WHERE chat_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	chat.Messages = make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var citations []byte
		if err := rows.Scan(&msg.Role, &msg.Content, &citations, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if err := json.Unmarshal(citations, &msg.Citations); err != nil {
			return nil, fmt.Errorf("decode citations: %w", err)
		}
		chat.Messages = append(chat.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return &chat, nil
}

func (s *Postgres) ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, title, created_at, last_updated
		FROM chats WHERE user_id = $1
		ORDER BY last_updated DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	out := make([]models.ChatSummary, 0)
	for rows.Next() {
		var item models.ChatSummary
		if err := rows.Scan(&item.ID, &item.Title, &item.CreatedAt, &item.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan chat summary: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Postgres) AppendMessages(ctx context.Context, chatID string, messages []models.Message, updatedAt time.Time) (err error) {
	if _, parseErr := uuid.Parse(chatID); parseErr != nil {
		return ErrNotFound
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warn("rollback failed", "error", rbErr)
			}
		}
	}()

	tag, err := tx.Exec(ctx, `UPDATE chats SET last_updated = $2 WHERE id = $1`, chatID, updatedAt)
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	for _, msg := range messages {
		citations, marshalErr := json.Marshal(nonNilCitations(msg.Citations))
		if marshalErr != nil {
			err = fmt.Errorf("encode citations: %w", marshalErr)
			return err
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO chat_messages (chat_id, role, content, citations, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, chatID, msg.Role, msg.Content, citations, msg.Timestamp); err != nil {
			return fmt.Errorf("insert chat message: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, document_id, quiz_type, questions, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, quiz.ID, quiz.DocumentID, string(quiz.Type), questions, quiz.CreatedAt); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Postgres) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var quiz models.Quiz
	var quizType string
	var questions []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, document_id, quiz_type, questions, created_at
		FROM quizzes WHERE id = $1
	`, id).Scan(&quiz.ID, &quiz.DocumentID, &quizType, &questions, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	quiz.Type = models.QuizType(quizType)
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return &quiz, nil
}

func (s *Postgres) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, user_id, answers, score, total_questions, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, attempt.ID, attempt.QuizID, attempt.UserID, answers, attempt.Score, attempt.TotalQuestions, attempt.AttemptedAt); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Postgres) ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, quiz_id, user_id, answers, score, total_questions, attempted_at
		FROM quiz_attempts WHERE user_id = $1
		ORDER BY attempted_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]models.QuizAttempt, 0)
	for rows.Next() {
		var attempt models.QuizAttempt
		var answers []byte
		if err := rows.Scan(&attempt.ID, &attempt.QuizID, &attempt.UserID, &answers, &attempt.Score, &attempt.TotalQuestions, &attempt.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		out = append(out, attempt)
	}
	return out, rows.Err()
}

func (s *Postgres) ClaimSentinel(ctx context.Context, name string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO app_sentinels (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return false, fmt.Errorf("claim sentinel %s: %w", name, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

// validUUIDs drops ids the uuid column could never match.
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			out = append(out, parsed.String())
		}
	}
	return out
}

// canonical lower-cases ids the way postgres renders uuids back.
func canonical(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			out[i] = parsed.String()
		} else {
			out[i] = id
		}
	}
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilCitations(in []models.Citation) []models.Citation {
	if in == nil {
		return []models.Citation{}
	}
	return in
}

var _ Store = (*Postgres)(nil)
