// Package videos recommends videos from a curated catalog using keywords
// extracted from study documents.
package videos

import (
	"context"
	"errors"
	"strings"

	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
)

var ErrNoDocuments = errors.New("document ids are required")

type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetDocuments(ctx context.Context, ids []string) ([]models.Document, error)
}

type Result struct {
	PDFTitle string           `json:"pdfTitle"`
	Keywords []string         `json:"keywords"`
	Videos   []Recommendation `json:"videos"`
}

type BulkResult struct {
	SourceTitle string           `json:"sourceTitle"`
	Keywords    []string         `json:"keywords"`
	Videos      []Recommendation `json:"videos"`
}

type Service struct {
	docs    DocumentStore
	cache   Cache
	catalog []Entry
	logger  *logger.Logger
}

// NewService builds a recommender over the built-in catalog. cache may be nil.
func NewService(docs DocumentStore, cache Cache, log *logger.Logger) *Service {
	return &Service{
		docs:    docs,
		cache:   cache,
		catalog: Catalog(),
		logger:  logger.OrNop(log),
	}
}

func (s *Service) Recommend(ctx context.Context, documentID string) (*Result, error) {
	key := cacheKey("single", []string{documentID})
	var cached Result
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	keywords := ExtractKeywords(doc.Content)
	res := &Result{
		PDFTitle: doc.OriginalName,
		Keywords: keywords,
		Videos:   Score(keywords, doc.OriginalName, s.catalog),
	}
	s.store(ctx, key, res)
	return res, nil
}

// RecommendBulk scores the combined content and titles of several documents.
// Unknown ids are skipped.
func (s *Service) RecommendBulk(ctx context.Context, ids []string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoDocuments
	}

	key := cacheKey("bulk", ids)
	var cached BulkResult
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	docs, err := s.docs.GetDocuments(ctx, ids)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(docs))
	titles := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
		titles = append(titles, doc.OriginalName)
	}
	title := strings.Join(titles, ", ")
	keywords := ExtractKeywords(strings.Join(contents, " "))

	res := &BulkResult{
		SourceTitle: title,
		Keywords:    keywords,
		Videos:      Score(keywords, title, s.catalog),
	}
	s.store(ctx, key, res)
	return res, nil
}

func (s *Service) lookup(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn("video cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("video cache write failed", "key", key, "error", err)
	}
}
