// Package quiz generates quizzes from stored documents and grades attempts.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fabfab/study-agent/assistant"
	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 20
)

var ErrInvalidQuizType = errors.New("quiz type must be one of MCQ, SAQ, LAQ")

type Store interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error)
}

// Generator produces questions for a quiz request.
type Generator interface {
	GenerateQuestions(ctx context.Context, req assistant.QuizRequest) assistant.Generation
}

type GenerateRequest struct {
	DocumentID    string
	Type          models.QuizType
	QuestionCount int
}

// Generated is a persisted quiz plus the user-facing status of how it was made.
type Generated struct {
	Quiz    *models.Quiz
	Mode    assistant.Mode
	Message string
	Note    string
}

// Submission is a persisted attempt with its rounded percentage.
type Submission struct {
	Attempt    *models.QuizAttempt
	Percentage int
}

type Service struct {
	store     Store
	generator Generator
	logger    *logger.Logger
}

func NewService(store Store, generator Generator, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		logger:    logger.OrNop(log),
	}
}

func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Generated, error) {
	quizType := models.QuizType(strings.ToUpper(strings.TrimSpace(string(req.Type))))
	if !quizType.Valid() {
		return nil, ErrInvalidQuizType
	}
	count := clampCount(req.QuestionCount)

	doc, err := s.store.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", req.DocumentID, err)
	}

	gen := s.generator.GenerateQuestions(ctx, assistant.QuizRequest{
		Type:   quizType,
		Count:  count,
		Chunks: doc.Chunks,
	})
	for i := range gen.Questions {
		gen.Questions[i].Type = quizType
	}

	quiz := &models.Quiz{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Type:       quizType,
		Questions:  gen.Questions,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.logger.Info("quiz generated", "quiz", quiz.ID, "document", doc.ID, "type", quizType, "questions", len(quiz.Questions), "mode", gen.Mode)
	return &Generated{Quiz: quiz, Mode: gen.Mode, Message: gen.Message, Note: gen.Note}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	return quiz, nil
}

// Submit grades answers against quizID and records the attempt for userID.
func (s *Service) Submit(ctx context.Context, quizID, userID string, answers []string) (*Submission, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	if strings.TrimSpace(userID) == "" {
		userID = models.DefaultUserID
	}

	attempt := Grade(*quiz, answers)
	attempt.ID = uuid.NewString()
	attempt.UserID = userID
	attempt.AttemptedAt = time.Now().UTC()
	if err := s.store.CreateAttempt(ctx, &attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	return &Submission{
		Attempt:    &attempt,
		Percentage: Percentage(attempt.Score, attempt.TotalQuestions),
	}, nil
}

func (s *Service) Attempts(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	if strings.TrimSpace(userID) == "" {
		userID = models.DefaultUserID
	}
	attempts, err := s.store.ListAttempts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

func clampCount(n int) int {
	switch {
	case n == 0:
		return defaultQuestionCount
	case n < 1:
		return 1
	case n > maxQuestionCount:
		return maxQuestionCount
	default:
		return n
	}
}
