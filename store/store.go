// Package store persists documents, chats, quizzes and attempts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fabfab/study-agent/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

type Store interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	// GetDocuments returns the documents in ids order, skipping unknown ids.
	GetDocuments(ctx context.Context, ids []string) ([]models.Document, error)
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)

	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error)
	AppendMessages(ctx context.Context, chatID string, messages []models.Message, updatedAt time.Time) error

	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)

	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	// ListAttempts returns a user's attempts, newest first.
	ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error)

	// ClaimSentinel records name and reports whether this call created it.
	ClaimSentinel(ctx context.Context, name string) (bool, error)

	Close() error
}

func orderByIDs(docs map[string]models.Document, ids []string) []models.Document {
	out := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out
}
