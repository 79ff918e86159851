package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/assistant"
	"github.com/fabfab/study-agent/chat"
	"github.com/fabfab/study-agent/config"
	"github.com/fabfab/study-agent/ingestion"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/progress"
	"github.com/fabfab/study-agent/quiz"
	"github.com/fabfab/study-agent/store"
	"github.com/fabfab/study-agent/uploads"
	"github.com/fabfab/study-agent/videos"
)

type textExtractor string

func (t textExtractor) Extract(context.Context, []byte) (string, error) {
	return string(t), nil
}

func newTestServer(t *testing.T, text string) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	files, err := uploads.NewLocal(t.TempDir())
	require.NoError(t, err)

	assembler := assistant.NewAssembler(nil, 0, nil)
	svc := Services{
		Documents: mem,
		Ingestion: ingestion.NewService(mem, files, textExtractor(text), nil, nil),
		Chat:      chat.NewService(mem, assembler, nil),
		Quiz:      quiz.NewService(mem, assembler, nil),
		Progress:  progress.NewService(mem, nil),
		Videos:    videos.NewService(mem, nil, nil),
	}
	return New(config.Config{AllowedOrigins: []string{"*"}}, svc, nil), mem
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		part, err := mw.CreateFormFile(uploadField, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pdfs/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "")
	for _, path := range []string{"/", "/api", "/api/health"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := doJSON(t, s, http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
}

func TestUploadTwoPagesThenReadBack(t *testing.T) {
	s, _ := newTestServer(t, "First page about motion."+ingestion.PageBreak+"Second page about heat.")

	rec := upload(t, s, "physics.pdf", []byte("%PDF-1.4 fake"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	up := decode[uploadResponse](t, rec)
	assert.Equal(t, "PDF uploaded successfully", up.Message)
	assert.Equal(t, "physics.pdf", up.PDF.OriginalName)
	assert.Equal(t, 2, up.PDF.PageCount)

	rec = doJSON(t, s, http.MethodGet, "/api/pdfs/"+up.PDF.ID+"/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode[contentResponse](t, rec)
	require.Len(t, content.Chunks, 2)
	assert.Equal(t, 0, content.Chunks[0].ChunkIndex)
	assert.Equal(t, 1, content.Chunks[1].ChunkIndex)
	assert.Equal(t, 1, content.Chunks[0].PageNumber)
	assert.Equal(t, 2, content.Chunks[1].PageNumber)

	rec = doJSON(t, s, http.MethodGet, "/api/pdfs/"+up.PDF.ID+"/file", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 fake", rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/pdfs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.DocumentSummary](t, rec), 1)

	rec = doJSON(t, s, http.MethodGet, "/api/pdfs/"+up.PDF.ID+"/related", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUploadRejections(t *testing.T) {
	s, _ := newTestServer(t, "text")

	rec := upload(t, s, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, s, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/pdfs/missing/content", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatWithoutCredential(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := doJSON(t, s, http.MethodPost, "/api/chat/create", createChatRequest{Title: "Revision"})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[createChatResponse](t, rec)
	assert.Equal(t, models.DefaultUserID, created.Chat.UserID)

	rec = doJSON(t, s, http.MethodPost, "/api/chat/message", sendMessageRequest{ChatID: created.Chat.ID, Message: "What is torque?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := decode[sendMessageResponse](t, rec)
	assert.Equal(t, models.RoleAssistant, sent.Response.Role)
	assert.Contains(t, sent.Response.Content, "I'd be happy to help, but I need access to your study materials first.")
	assert.Empty(t, sent.Response.Citations)

	rec = doJSON(t, s, http.MethodGet, "/api/chat/"+created.Chat.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.Chat](t, rec).Messages, 2)

	rec = doJSON(t, s, http.MethodGet, "/api/chat/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ChatSummary](t, rec), 1)

	rec = doJSON(t, s, http.MethodPost, "/api/chat/message", sendMessageRequest{ChatID: created.Chat.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/chat/message", sendMessageRequest{ChatID: "missing", Message: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizSubmitGrades(t *testing.T) {
	s, mem := newTestServer(t, "")
	require.NoError(t, mem.CreateQuiz(context.Background(), &models.Quiz{
		ID:   "quiz-1",
		Type: models.QuizTypeSAQ,
		Questions: []models.Question{
			{Text: "first", CorrectAnswer: "a"},
			{Text: "second", CorrectAnswer: "B"},
		},
	}))

	rec := doJSON(t, s, http.MethodPost, "/api/quiz/submit", submitQuizRequest{QuizID: "quiz-1", Answers: []string{"A", "wrong"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sub := decode[submitQuizResponse](t, rec)
	assert.Equal(t, 1, sub.Attempt.Score)
	assert.Equal(t, 50, sub.Percentage)
	require.Len(t, sub.Attempt.Answers, 2)
	assert.True(t, sub.Attempt.Answers[0].IsCorrect)
	assert.False(t, sub.Attempt.Answers[1].IsCorrect)

	rec = doJSON(t, s, http.MethodGet, "/api/quiz/attempts/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.QuizAttempt](t, rec), 1)

	rec = doJSON(t, s, http.MethodGet, "/api/progress/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[progress.Summary](t, rec)
	assert.Equal(t, 1, summary.TotalAttempts)
	assert.Equal(t, 50, summary.AverageScore)
}

func TestQuizGenerateWithoutCredential(t *testing.T) {
	s, _ := newTestServer(t, "Velocity and acceleration.")
	up := decode[uploadResponse](t, upload(t, s, "motion.pdf", []byte("%PDF")))

	rec := doJSON(t, s, http.MethodPost, "/api/quiz/generate", generateQuizRequest{PDFID: up.PDF.ID, Type: models.QuizTypeMCQ})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen := decode[generateQuizResponse](t, rec)
	assert.True(t, strings.HasPrefix(gen.Message, "Sample quiz generated"))
	require.Len(t, gen.Quiz.Questions, 2)

	rec = doJSON(t, s, http.MethodGet, "/api/quiz/"+gen.Quiz.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/quiz/generate", generateQuizRequest{PDFID: up.PDF.ID, Type: "essay"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/quiz/generate", generateQuizRequest{PDFID: "missing", Type: models.QuizTypeMCQ})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVideoRecommendations(t *testing.T) {
	s, _ := newTestServer(t, "Newton's laws of motion describe force and acceleration.")
	up := decode[uploadResponse](t, upload(t, s, "laws.pdf", []byte("%PDF")))

	rec := doJSON(t, s, http.MethodGet, "/api/videos/recommendations/"+up.PDF.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[videos.Result](t, rec)
	assert.Equal(t, "laws.pdf", res.PDFTitle)
	assert.NotEmpty(t, res.Videos)

	rec = doJSON(t, s, http.MethodPost, "/api/videos/recommendations/bulk", bulkRecommendationRequest{PDFIDs: []string{up.PDF.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "laws.pdf", decode[videos.BulkResult](t, rec).SourceTitle)

	rec = doJSON(t, s, http.MethodPost, "/api/videos/recommendations/bulk", bulkRecommendationRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/videos/recommendations/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	s, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/chat/create", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
