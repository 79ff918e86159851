package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fabfab/study-agent/knowledge"
	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/uploads"
	"github.com/fabfab/study-agent/videos"
)

// ErrInvalidUpload marks uploads rejected before anything is stored.
var ErrInvalidUpload = errors.New("invalid upload")

type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
}

// GraphSyncer mirrors documents into the knowledge graph.
type GraphSyncer interface {
	SyncDocument(ctx context.Context, doc knowledge.Document) error
}

type Upload struct {
	Name string
	Data []byte
}

type Service struct {
	docs      DocumentStore
	files     uploads.Store
	extractor Extractor
	graph     GraphSyncer
	logger    *logger.Logger
}

// NewService wires the ingestion pipeline. graph may be nil; extractor
// defaults to PDFExtractor.
func NewService(docs DocumentStore, files uploads.Store, extractor Extractor, graph GraphSyncer, log *logger.Logger) *Service {
	if extractor == nil {
		extractor = PDFExtractor{}
	}
	return &Service{
		docs:      docs,
		files:     files,
		extractor: extractor,
		graph:     graph,
		logger:    logger.OrNop(log),
	}
}

// Ingest extracts, chunks and stores an uploaded PDF.
func (s *Service) Ingest(ctx context.Context, up Upload) (*models.Document, error) {
	name := filepath.Base(strings.TrimSpace(up.Name))
	if len(up.Data) == 0 {
		return nil, fmt.Errorf("%w: no file uploaded", ErrInvalidUpload)
	}
	if DetectFormat(name) != FormatPDF {
		return nil, fmt.Errorf("%w: only PDF files are supported", ErrInvalidUpload)
	}

	text, err := s.extractor.Extract(ctx, up.Data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: read pdf: %v", ErrInvalidUpload, err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%d-%s", now.UnixNano(), name)
	if err := s.files.Save(ctx, key, bytes.NewReader(up.Data)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &models.Document{
		ID:           uuid.NewString(),
		OriginalName: name,
		StorageKey:   key,
		Content:      text,
		Chunks:       Chunk(text),
		UploadDate:   now,
	}
	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned upload left behind", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.syncGraph(ctx, doc)
	s.logger.Info("ingested document", "id", doc.ID, "name", doc.OriginalName, "chunks", len(doc.Chunks))
	return doc, nil
}

// SeedSamples inserts the sample documents once and mirrors them into the
// knowledge graph.
func (s *Service) SeedSamples(ctx context.Context, sentinels SentinelStore) (int, error) {
	docs, err := Seed(ctx, sentinels, s.docs, s.logger)
	for i := range docs {
		s.syncGraph(ctx, &docs[i])
	}
	return len(docs), err
}

// OpenFile returns the stored upload behind doc.
func (s *Service) OpenFile(ctx context.Context, doc *models.Document) (io.ReadCloser, error) {
	if doc.StorageKey == "" {
		return nil, uploads.ErrNotFound
	}
	rc, err := s.files.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return rc, nil
}

func (s *Service) syncGraph(ctx context.Context, doc *models.Document) {
	if s.graph == nil {
		return
	}
	if err := s.graph.SyncDocument(ctx, GraphDocument(doc)); err != nil {
		s.logger.Warn("knowledge graph sync failed", "id", doc.ID, "error", err)
	}
}

// GraphDocument converts doc into its knowledge graph form.
func GraphDocument(doc *models.Document) knowledge.Document {
	chunks := make([]knowledge.Chunk, 0, len(doc.Chunks))
	for _, c := range doc.Chunks {
		chunks = append(chunks, knowledge.Chunk{Index: c.ChunkIndex, PageNumber: c.PageNumber, Text: c.Text})
	}
	return knowledge.Document{
		ID:       doc.ID,
		Title:    doc.OriginalName,
		Chunks:   chunks,
		Keywords: videos.ExtractKeywords(doc.Content),
	}
}
