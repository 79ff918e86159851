package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fabfab/study-agent/models"
)

// Memory keeps everything in process. Values are copied on the way in and
// out so callers never share slices with the store.
type Memory struct {
	mu        sync.RWMutex
	documents map[string]models.Document
	chats     map[string]models.Chat
	quizzes   map[string]models.Quiz
	attempts  map[string]models.QuizAttempt
	sentinels map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{
		documents: make(map[string]models.Document),
		chats:     make(map[string]models.Chat),
		quizzes:   make(map[string]models.Quiz),
		attempts:  make(map[string]models.QuizAttempt),
		sentinels: make(map[string]time.Time),
	}
}

func (m *Memory) CreateDocument(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	m.documents[doc.ID] = copyDocument(*doc)
	return nil
}

func (m *Memory) GetDocument(_ context.Context, id string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyDocument(doc)
	return &out, nil
}

func (m *Memory) GetDocuments(_ context.Context, ids []string) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make(map[string]models.Document, len(ids))
	for _, id := range ids {
		if doc, ok := m.documents[id]; ok {
			found[id] = copyDocument(doc)
		}
	}
	return orderByIDs(found, ids), nil
}

func (m *Memory) ListDocuments(_ context.Context) ([]models.DocumentSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.DocumentSummary, 0, len(m.documents))
	for _, doc := range m.documents {
		out = append(out, doc.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadDate.After(out[j].UploadDate)
	})
	return out, nil
}

func (m *Memory) CreateChat(_ context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chat.ID]; ok {
		return fmt.Errorf("chat %s already exists", chat.ID)
	}
	m.chats[chat.ID] = copyChat(*chat)
	return nil
}

func (m *Memory) GetChat(_ context.Context, id string) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chat, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyChat(chat)
	return &out, nil
}

func (m *Memory) ListChats(_ context.Context, userID string) ([]models.ChatSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ChatSummary, 0)
	for _, chat := range m.chats {
		if chat.UserID != userID {
			continue
		}
		out = append(out, models.ChatSummary{
			ID:          chat.ID,
			Title:       chat.Title,
			CreatedAt:   chat.CreatedAt,
			LastUpdated: chat.LastUpdated,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

func (m *Memory) AppendMessages(_ context.Context, chatID string, messages []models.Message, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	for _, msg := range messages {
		msg.Citations = append([]models.Citation(nil), msg.Citations...)
		chat.Messages = append(chat.Messages, msg)
	}
	chat.LastUpdated = updatedAt
	m.chats[chatID] = chat
	return nil
}

func (m *Memory) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[quiz.ID]; ok {
		return fmt.Errorf("quiz %s already exists", quiz.ID)
	}
	m.quizzes[quiz.ID] = copyQuiz(*quiz)
	return nil
}

func (m *Memory) GetQuiz(_ context.Context, id string) (*models.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	quiz, ok := m.quizzes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyQuiz(quiz)
	return &out, nil
}

func (m *Memory) CreateAttempt(_ context.Context, attempt *models.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[attempt.ID]; ok {
		return fmt.Errorf("attempt %s already exists", attempt.ID)
	}
	cp := *attempt
	cp.Answers = append([]models.GradedAnswer(nil), attempt.Answers...)
	m.attempts[attempt.ID] = cp
	return nil
}

func (m *Memory) ListAttempts(_ context.Context, userID string) ([]models.QuizAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.QuizAttempt, 0)
	for _, attempt := range m.attempts {
		if attempt.UserID != userID {
			continue
		}
		attempt.Answers = append([]models.GradedAnswer(nil), attempt.Answers...)
		out = append(out, attempt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AttemptedAt.After(out[j].AttemptedAt)
	})
	return out, nil
}

func (m *Memory) ClaimSentinel(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sentinels[name]; ok {
		return false, nil
	}
	m.sentinels[name] = time.Now().UTC()
	return true, nil
}

func (m *Memory) Close() error {
	return nil
}

func copyDocument(doc models.Document) models.Document {
	doc.Chunks = append([]models.Chunk(nil), doc.Chunks...)
	return doc
}

func copyChat(chat models.Chat) models.Chat {
	messages := make([]models.Message, len(chat.Messages))
	for i, msg := range chat.Messages {
		msg.Citations = append([]models.Citation(nil), msg.Citations...)
		messages[i] = msg
	}
	chat.Messages = messages
	chat.DocumentIDs = append([]string(nil), chat.DocumentIDs...)
	return chat
}

func copyQuiz(quiz models.Quiz) models.Quiz {
	questions := make([]models.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	quiz.Questions = questions
	return quiz
}

var _ Store = (*Memory)(nil)
