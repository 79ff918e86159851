// Package models holds the entities shared by the ingestion, chat, quiz and
// recommendation workflows. JSON tags define the HTTP contract.
package models

import (
	"time"
	"unicode/utf8"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultUserID is used whenever a request does not name a user.
const DefaultUserID = "anonymous"

// Chunk is a page-bounded segment of extracted document text.
type Chunk struct {
	Text       string `json:"text" bson:"text"`
	PageNumber int    `json:"pageNumber" bson:"pageNumber"`
	ChunkIndex int    `json:"chunkIndex" bson:"chunkIndex"`
}

// Preview returns at most the first n runes of the chunk text.
func (c Chunk) Preview(n int) string {
	if utf8.RuneCountInString(c.Text) <= n {
		return c.Text
	}
	return string([]rune(c.Text)[:n])
}

type Document struct {
	ID           string    `json:"id" bson:"_id"`
	OriginalName string    `json:"originalName" bson:"originalName"`
	StorageKey   string    `json:"storageKey" bson:"storageKey"`
	Content      string    `json:"content" bson:"content"`
	Chunks       []Chunk   `json:"chunks" bson:"chunks"`
	IsSample     bool      `json:"isSample" bson:"isSample"`
	UploadDate   time.Time `json:"uploadDate" bson:"uploadDate"`
}

// Summary drops content and chunks for listings.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:           d.ID,
		OriginalName: d.OriginalName,
		UploadDate:   d.UploadDate,
		IsSample:     d.IsSample,
		PageCount:    len(d.Chunks),
	}
}

type DocumentSummary struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	UploadDate   time.Time `json:"uploadDate"`
	IsSample     bool      `json:"isSample"`
	PageCount    int       `json:"pageCount"`
}

// Citation points from an assistant reply back to the page that informed it.
type Citation struct {
	PageNumber int    `json:"pageNumber" bson:"pageNumber"`
	Snippet    string `json:"snippet" bson:"snippet"`
	DocumentID string `json:"documentId" bson:"documentId"`
}

type Message struct {
	Role      string     `json:"role" bson:"role"`
	Content   string     `json:"content" bson:"content"`
	Citations []Citation `json:"citations,omitempty" bson:"citations,omitempty"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
}

type Chat struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"userId" bson:"userId"`
	Title       string    `json:"title" bson:"title"`
	Messages    []Message `json:"messages" bson:"messages"`
	DocumentIDs []string  `json:"documentIds" bson:"documentIds"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

type ChatSummary struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

type QuizType string

const (
	QuizTypeMCQ QuizType = "MCQ"
	QuizTypeSAQ QuizType = "SAQ"
	QuizTypeLAQ QuizType = "LAQ"
)

// Valid reports whether t is one of the supported quiz types.
func (t QuizType) Valid() bool {
	switch t {
	case QuizTypeMCQ, QuizTypeSAQ, QuizTypeLAQ:
		return true
	default:
		return false
	}
}

type Question struct {
	Text          string   `json:"text" bson:"text"`
	Type          QuizType `json:"type" bson:"type"`
	Options       []string `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer" bson:"correctAnswer"`
	Explanation   string   `json:"explanation" bson:"explanation"`
	PageReference int      `json:"pageReference" bson:"pageReference"`
}

type Quiz struct {
	ID         string     `json:"id" bson:"_id"`
	DocumentID string     `json:"documentId" bson:"documentId"`
	Type       QuizType   `json:"type" bson:"type"`
	Questions  []Question `json:"questions" bson:"questions"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
}

type GradedAnswer struct {
	QuestionIndex int    `json:"questionIndex" bson:"questionIndex"`
	AnswerText    string `json:"answerText" bson:"answerText"`
	IsCorrect     bool   `json:"isCorrect" bson:"isCorrect"`
}

type QuizAttempt struct {
	ID             string         `json:"id" bson:"_id"`
	QuizID         string         `json:"quizId" bson:"quizId"`
	UserID         string         `json:"userId" bson:"userId"`
	Answers        []GradedAnswer `json:"answers" bson:"answers"`
	Score          int            `json:"score" bson:"score"`
	TotalQuestions int            `json:"totalQuestions" bson:"totalQuestions"`
	AttemptedAt    time.Time      `json:"attemptedAt" bson:"attemptedAt"`
}
