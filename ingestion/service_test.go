package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/knowledge"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/store"
	"github.com/fabfab/study-agent/uploads"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, []byte) (string, error) {
	return s.text, s.err
}

type stubGraph struct {
	synced []knowledge.Document
	err    error
}

func (g *stubGraph) SyncDocument(_ context.Context, doc knowledge.Document) error {
	g.synced = append(g.synced, doc)
	return g.err
}

func newTestService(t *testing.T, extractor Extractor, graph GraphSyncer) (*Service, *store.Memory) {
	t.Helper()
	files, err := uploads.NewLocal(t.TempDir())
	require.NoError(t, err)
	mem := store.NewMemory()
	return NewService(mem, files, extractor, graph, nil), mem
}

func TestIngestStoresChunkedDocument(t *testing.T) {
	graph := &stubGraph{}
	svc, mem := newTestService(t, stubExtractor{text: "Velocity is the rate of change of displacement.\fAcceleration is the rate of change of velocity."}, graph)
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, Upload{Name: "kinematics.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)

	require.Len(t, doc.Chunks, 2)
	assert.Equal(t, []int{0, 1}, []int{doc.Chunks[0].ChunkIndex, doc.Chunks[1].ChunkIndex})
	assert.Equal(t, []int{1, 2}, []int{doc.Chunks[0].PageNumber, doc.Chunks[1].PageNumber})
	assert.Equal(t, "kinematics.pdf", doc.OriginalName)
	assert.Contains(t, doc.StorageKey, "-kinematics.pdf")

	stored, err := mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Chunks, 2)

	rc, err := svc.OpenFile(ctx, stored)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "%PDF-1.4", string(data))

	require.Len(t, graph.synced, 1)
	assert.Equal(t, doc.ID, graph.synced[0].ID)
	assert.Contains(t, graph.synced[0].Keywords, "velocity")
	assert.Len(t, graph.synced[0].Chunks, 2)
}

func TestIngestRejectsInvalidUploads(t *testing.T) {
	svc, _ := newTestService(t, stubExtractor{text: "x"}, nil)

	_, err := svc.Ingest(context.Background(), Upload{Name: "a.pdf"})
	assert.ErrorIs(t, err, ErrInvalidUpload)

	_, err = svc.Ingest(context.Background(), Upload{Name: "a.txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestIngestUnreadablePDF(t *testing.T) {
	svc, mem := newTestService(t, stubExtractor{err: errors.New("malformed xref")}, nil)

	_, err := svc.Ingest(context.Background(), Upload{Name: "broken.pdf", Data: []byte("garbage")})
	assert.ErrorIs(t, err, ErrInvalidUpload)

	list, _ := mem.ListDocuments(context.Background())
	assert.Empty(t, list)
}

type failingDocs struct {
	*store.Memory
}

func (failingDocs) CreateDocument(context.Context, *models.Document) error {
	return errors.New("disk full")
}

func TestIngestRemovesUploadWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	files, err := uploads.NewLocal(dir)
	require.NoError(t, err)
	svc := NewService(failingDocs{store.NewMemory()}, files, stubExtractor{text: "page"}, nil, nil)

	_, err = svc.Ingest(context.Background(), Upload{Name: "a.pdf", Data: []byte("x")})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestGraphFailureIsNotFatal(t *testing.T) {
	svc, _ := newTestService(t, stubExtractor{text: "page"}, &stubGraph{err: errors.New("neo4j down")})

	doc, err := svc.Ingest(context.Background(), Upload{Name: "a.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Len(t, doc.Chunks, 1)
}

func TestIngestStripsDirectories(t *testing.T) {
	svc, _ := newTestService(t, stubExtractor{text: "page"}, nil)

	doc, err := svc.Ingest(context.Background(), Upload{Name: "../../etc/notes.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", doc.OriginalName)
}

func TestOpenFileWithoutStoredUpload(t *testing.T) {
	svc, _ := newTestService(t, stubExtractor{}, nil)

	_, err := svc.OpenFile(context.Background(), &models.Document{ID: "sample"})
	assert.ErrorIs(t, err, uploads.ErrNotFound)
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
