package videos

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/store"
)

type stubDocs struct {
	docs  map[string]models.Document
	calls int
}

func (s *stubDocs) GetDocument(_ context.Context, id string) (*models.Document, error) {
	s.calls++
	doc, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &doc, nil
}

func (s *stubDocs) GetDocuments(_ context.Context, ids []string) ([]models.Document, error) {
	s.calls++
	out := make([]models.Document, 0)
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

type mapCache struct {
	data   map[string][]byte
	getErr error
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func newStubDocs() *stubDocs {
	return &stubDocs{docs: map[string]models.Document{
		"kin": {ID: "kin", OriginalName: "Kinematics.pdf", Content: "Motion, velocity and acceleration describe kinematics."},
		"thermo": {ID: "thermo", OriginalName: "Heat.pdf", Content: "Thermodynamics studies heat, temperature and entropy."},
	}}
}

func TestRecommend(t *testing.T) {
	svc := NewService(newStubDocs(), nil, nil)

	res, err := svc.Recommend(context.Background(), "kin")
	require.NoError(t, err)
	assert.Equal(t, "Kinematics.pdf", res.PDFTitle)
	assert.Contains(t, res.Keywords, "velocity")
	require.NotEmpty(t, res.Videos)
	assert.Equal(t, "physics_fundamentals_1", res.Videos[0].ID)
}

func TestRecommendMissingDocument(t *testing.T) {
	svc := NewService(newStubDocs(), nil, nil)

	_, err := svc.Recommend(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecommendBulk(t *testing.T) {
	svc := NewService(newStubDocs(), nil, nil)

	_, err := svc.RecommendBulk(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDocuments)

	res, err := svc.RecommendBulk(context.Background(), []string{"kin", "missing", "thermo"})
	require.NoError(t, err)
	assert.Equal(t, "Kinematics.pdf, Heat.pdf", res.SourceTitle)
	assert.Contains(t, res.Keywords, "velocity")
	assert.Contains(t, res.Keywords, "thermodynamics")
	assert.NotEmpty(t, res.Videos)
}

func TestRecommendUsesCache(t *testing.T) {
	docs := newStubDocs()
	cache := &mapCache{data: map[string][]byte{}}
	svc := NewService(docs, cache, nil)

	first, err := svc.Recommend(context.Background(), "kin")
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), "kin")
	require.NoError(t, err)

	assert.Equal(t, 1, docs.calls)
	assert.Equal(t, first.Videos[0].ID, second.Videos[0].ID)
	assert.Contains(t, cache.data, cacheKey("single", []string{"kin"}))
}

func TestRecommendCacheFailureFallsThrough(t *testing.T) {
	docs := newStubDocs()
	svc := NewService(docs, &mapCache{data: map[string][]byte{}, getErr: errors.New("connection refused")}, nil)

	res, err := svc.Recommend(context.Background(), "kin")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Videos)
	assert.Equal(t, 1, docs.calls)
}

func TestCacheKeyDistinguishesKinds(t *testing.T) {
	assert.NotEqual(t, cacheKey("single", []string{"a"}), cacheKey("bulk", []string{"a"}))
	assert.Equal(t, cacheKey("bulk", []string{"a", "b"}), cacheKey("bulk", []string{"a", "b"}))
	assert.Contains(t, cacheKey("bulk", []string{"a"}), "videos:rec:")
}
