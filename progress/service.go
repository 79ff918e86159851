// Package progress summarises a user's quiz history.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/quiz"
	"github.com/fabfab/study-agent/store"
)

const (
	recentLimit       = 5
	strengthThreshold = 70
	weaknessThreshold = 50
)

type Store interface {
	ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error)
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
}

type DocumentStats struct {
	Attempts       int `json:"attempts"`
	TotalScore     int `json:"totalScore"`
	TotalQuestions int `json:"totalQuestions"`
}

// Topic is a document name with its rounded percentage across attempts.
type Topic struct {
	Topic      string `json:"topic"`
	Percentage int    `json:"percentage"`
}

type Summary struct {
	TotalAttempts  int                      `json:"totalAttempts"`
	AverageScore   int                      `json:"averageScore"`
	RecentAttempts []models.QuizAttempt     `json:"recentAttempts"`
	Strengths      []Topic                  `json:"strengths"`
	Weaknesses     []Topic                  `json:"weaknesses"`
	DocumentStats  map[string]DocumentStats `json:"pdfStats"`
}

type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: logger.OrNop(log)}
}

// Summary aggregates every attempt of userID. Attempts whose quiz or document
// no longer exists still count toward the totals but not the per-document stats.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	if strings.TrimSpace(userID) == "" {
		userID = models.DefaultUserID
	}
	attempts, err := s.store.ListAttempts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	out := &Summary{
		TotalAttempts:  len(attempts),
		RecentAttempts: attempts[:min(recentLimit, len(attempts))],
		Strengths:      []Topic{},
		Weaknesses:     []Topic{},
		DocumentStats:  map[string]DocumentStats{},
	}

	var score, total int
	var order []string
	names := map[string]string{}
	for _, a := range attempts {
		score += a.Score
		total += a.TotalQuestions

		name, err := s.documentName(ctx, a.QuizID, names)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		stats, seen := out.DocumentStats[name]
		if !seen {
			order = append(order, name)
		}
		stats.Attempts++
		stats.TotalScore += a.Score
		stats.TotalQuestions += a.TotalQuestions
		out.DocumentStats[name] = stats
	}
	out.AverageScore = quiz.Percentage(score, total)

	for _, name := range order {
		stats := out.DocumentStats[name]
		if stats.TotalQuestions == 0 {
			continue
		}
		pct := float64(stats.TotalScore) / float64(stats.TotalQuestions) * 100
		topic := Topic{Topic: name, Percentage: int(math.Round(pct))}
		switch {
		case pct >= strengthThreshold:
			out.Strengths = append(out.Strengths, topic)
		case pct < weaknessThreshold:
			out.Weaknesses = append(out.Weaknesses, topic)
		}
	}
	return out, nil
}

// documentName resolves quizID to the name of its document, memoising in
// cache. Dangling references resolve to "".
func (s *Service) documentName(ctx context.Context, quizID string, cache map[string]string) (string, error) {
	if name, ok := cache[quizID]; ok {
		return name, nil
	}
	q, err := s.store.GetQuiz(ctx, quizID)
	if errors.Is(err, store.ErrNotFound) {
		cache[quizID] = ""
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	doc, err := s.store.GetDocument(ctx, q.DocumentID)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug("quiz references missing document", "quiz", quizID, "document", q.DocumentID)
		cache[quizID] = ""
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get document %s: %w", q.DocumentID, err)
	}
	cache[quizID] = doc.OriginalName
	return doc.OriginalName, nil
}
