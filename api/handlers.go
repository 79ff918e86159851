package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fabfab/study-agent/chat"
	"github.com/fabfab/study-agent/ingestion"
	"github.com/fabfab/study-agent/knowledge"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/quiz"
)

const (
	uploadField    = "pdf"
	uploadMemory   = 32 << 20
	defaultRelated = 5
)

type uploadResponse struct {
	Message string                 `json:"message"`
	PDF     models.DocumentSummary `json:"pdf"`
}

type contentResponse struct {
	ID           string         `json:"id"`
	OriginalName string         `json:"originalName"`
	Content      string         `json:"content"`
	Chunks       []models.Chunk `json:"chunks"`
	UploadDate   time.Time      `json:"uploadDate"`
}

type createChatRequest struct {
	UserID string   `json:"userId"`
	Title  string   `json:"title"`
	PDFIDs []string `json:"pdfIds"`
}

type createChatResponse struct {
	Message string       `json:"message"`
	Chat    *models.Chat `json:"chat"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Message  string         `json:"message"`
	Response models.Message `json:"response"`
}

type generateQuizRequest struct {
	PDFID         string          `json:"pdfId"`
	Type          models.QuizType `json:"type"`
	QuestionCount int             `json:"questionCount"`
}

type generateQuizResponse struct {
	Message string       `json:"message"`
	Quiz    *models.Quiz `json:"quiz"`
	Note    string       `json:"note,omitempty"`
}

type submitQuizRequest struct {
	QuizID  string   `json:"quizId"`
	UserID  string   `json:"userId"`
	Answers []string `json:"answers"`
}

type submitQuizResponse struct {
	Message    string              `json:"message"`
	Attempt    *models.QuizAttempt `json:"attempt"`
	Percentage int                 `json:"percentage"`
}

type bulkRecommendationRequest struct {
	PDFIDs []string `json:"pdfIds"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			s.fail(w, err)
			return
		}
		s.fail(w, fmt.Errorf("%w: no file uploaded", ingestion.ErrInvalidUpload))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		s.fail(w, fmt.Errorf("%w: no file uploaded", ingestion.ErrInvalidUpload))
		return
	}
	if err != nil {
		s.fail(w, fmt.Errorf("read upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, fmt.Errorf("read upload: %w", err))
		return
	}

	doc, err := s.svc.Ingestion.Ingest(r.Context(), ingestion.Upload{Name: header.Filename, Data: data})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, uploadResponse{Message: "PDF uploaded successfully", PDF: doc.Summary()})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Documents.ListDocuments(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.GetDocument(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	chunks := doc.Chunks
	if chunks == nil {
		chunks = []models.Chunk{}
	}
	s.writeJSON(w, http.StatusOK, contentResponse{
		ID:           doc.ID,
		OriginalName: doc.OriginalName,
		Content:      doc.Content,
		Chunks:       chunks,
		UploadDate:   doc.UploadDate,
	})
}

func (s *Server) handleDocumentFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.svc.Documents.GetDocument(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	rc, err := s.svc.Ingestion.OpenFile(ctx, doc)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.OriginalName))
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("stream pdf", "id", doc.ID, "error", err)
	}
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	if s.svc.Graph == nil {
		s.writeJSON(w, http.StatusOK, []knowledge.Related{})
		return
	}
	limit := defaultRelated
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(w, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		limit = n
	}
	related, err := s.svc.Graph.RelatedDocuments(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, related)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	created, err := s.svc.Chat.Create(r.Context(), chat.CreateRequest{
		UserID:      req.UserID,
		Title:       req.Title,
		DocumentIDs: req.PDFIDs,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, createChatResponse{Message: "Chat created successfully", Chat: created})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.svc.Chat.List(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chats)
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Chat.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	reply, err := s.svc.Chat.Send(r.Context(), req.ChatID, req.Message)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sendMessageResponse{Message: "Message sent successfully", Response: reply.Message})
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	gen, err := s.svc.Quiz.Generate(r.Context(), quiz.GenerateRequest{
		DocumentID:    req.PDFID,
		Type:          req.Type,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, generateQuizResponse{Message: gen.Message, Quiz: gen.Quiz, Note: gen.Note})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := s.svc.Quiz.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	sub, err := s.svc.Quiz.Submit(r.Context(), req.QuizID, req.UserID, req.Answers)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, submitQuizResponse{
		Message:    "Quiz submitted successfully",
		Attempt:    sub.Attempt,
		Percentage: sub.Percentage,
	})
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.svc.Quiz.Attempts(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Progress.Summary(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Videos.Recommend(r.Context(), mux.Vars(r)["pdfId"])
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBulkRecommendations(w http.ResponseWriter, r *http.Request) {
	var req bulkRecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.svc.Videos.RecommendBulk(r.Context(), req.PDFIDs)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}
