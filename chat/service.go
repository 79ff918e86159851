// Package chat runs conversations over uploaded study documents.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
)

const defaultTitle = "New Chat"

var ErrEmptyMessage = errors.New("message cannot be empty")

type Store interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error)
	AppendMessages(ctx context.Context, chatID string, messages []models.Message, updatedAt time.Time) error
	GetDocuments(ctx context.Context, ids []string) ([]models.Document, error)
}

// Responder turns a question and its retrieval context into an answer.
type Responder interface {
	Reply(ctx context.Context, query, contextText string) string
}

type Service struct {
	store     Store
	responder Responder
	logger    *logger.Logger
}

func NewService(store Store, responder Responder, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		responder: responder,
		logger:    logger.OrNop(log),
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Chat, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = models.DefaultUserID
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitle
	}
	docIDs := req.DocumentIDs
	if docIDs == nil {
		docIDs = []string{}
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Messages:    []models.Message{},
		DocumentIDs: docIDs,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	if strings.TrimSpace(userID) == "" {
		userID = models.DefaultUserID
	}
	chats, err := s.store.ListChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Chat, error) {
	chat, err := s.store.GetChat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	return chat, nil
}

// Send answers text within chatID and records both turns.
func (s *Service) Send(ctx context.Context, chatID, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat %s: %w", chatID, err)
	}

	docs, err := s.store.GetDocuments(ctx, chat.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("load chat documents: %w", err)
	}
	if len(docs) < len(chat.DocumentIDs) {
		s.logger.Debug("chat references missing documents", "chat", chatID, "requested", len(chat.DocumentIDs), "found", len(docs))
	}

	contextText, citations := Match(text, docs)
	answer := s.responder.Reply(ctx, text, contextText)

	now := time.Now().UTC()
	assistant := models.Message{
		Role:      models.RoleAssistant,
		Content:   answer,
		Citations: citations,
		Timestamp: now,
	}
	messages := []models.Message{
		{Role: models.RoleUser, Content: text, Timestamp: now},
		assistant,
	}
	if err := s.store.AppendMessages(ctx, chatID, messages, now); err != nil {
		return nil, fmt.Errorf("append messages: %w", err)
	}

	return &Reply{Message: assistant, Context: contextText}, nil
}
