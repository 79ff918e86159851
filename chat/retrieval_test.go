package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/models"
)

func doc(id string, texts ...string) models.Document {
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{Text: text, PageNumber: i + 1, ChunkIndex: i}
	}
	return models.Document{ID: id, Chunks: chunks}
}

func TestMatchLongTokenSubstring(t *testing.T) {
	docs := []models.Document{doc("d1", "Speed is a scalar.", "Instantaneous velocity is the limit of average velocity.")}

	ctx, citations := Match("velocity", docs)
	require.Len(t, citations, 1)
	assert.Equal(t, 2, citations[0].PageNumber)
	assert.Equal(t, "d1", citations[0].DocumentID)
	assert.Equal(t, "Page 2: Instantaneous velocity is the limit of average velocity....\n\n", ctx)
}

func TestMatchShortTokensOnlyInFirstTwoPositions(t *testing.T) {
	docs := []models.Document{doc("d1", "an ion drifts", "nothing here")}

	// "ion" is short but second, so it counts.
	_, citations := Match("what ion", docs)
	assert.Len(t, citations, 1)

	// "ion" third and short: ignored; "what"/"is" do not occur.
	_, citations = Match("what is ion", docs)
	assert.Empty(t, citations)
}

func TestMatchCaseInsensitive(t *testing.T) {
	_, citations := Match("NEWTON", []models.Document{doc("d", "newton's second law")})
	assert.Len(t, citations, 1)
}

func TestMatchCapsPerDocumentAndOverall(t *testing.T) {
	docs := []models.Document{
		doc("a", "force one", "force two", "force three", "force four"),
		doc("b", "force five"),
	}

	ctx, citations := Match("force", docs)
	require.Len(t, citations, 3)
	for _, c := range citations {
		assert.Equal(t, "a", c.DocumentID)
	}
	// Context keeps every matched chunk: three from a, one from b.
	assert.Equal(t, 4, strings.Count(ctx, "Page "))
	assert.NotContains(t, ctx, "force four")
	assert.Contains(t, ctx, "force five")
}

func TestMatchLaterDocumentsReachableWhenEarlierAreSparse(t *testing.T) {
	docs := []models.Document{doc("a", "energy"), doc("b", "energy", "energy")}

	_, citations := Match("energy", docs)
	require.Len(t, citations, 3)
	assert.Equal(t, []string{"a", "b", "b"}, []string{citations[0].DocumentID, citations[1].DocumentID, citations[2].DocumentID})
}

func TestMatchTruncatesExcerpts(t *testing.T) {
	long := "momentum " + strings.Repeat("é", 400)
	ctx, citations := Match("momentum", []models.Document{doc("d", long)})

	require.Len(t, citations, 1)
	assert.Equal(t, 153, len([]rune(citations[0].Snippet)))
	assert.True(t, strings.HasSuffix(citations[0].Snippet, "..."))
	assert.Equal(t, len([]rune("Page 1: "))+300+len("...\n\n"), len([]rune(ctx)))
}

func TestMatchEmptyInputs(t *testing.T) {
	ctx, citations := Match("velocity", nil)
	assert.Empty(t, ctx)
	assert.Empty(t, citations)

	ctx, citations = Match("   ", []models.Document{doc("d", "anything")})
	assert.Empty(t, ctx)
	assert.Empty(t, citations)
}

func TestMatchContextEmptyIffNoCitations(t *testing.T) {
	docs := []models.Document{doc("a", "heat and temperature"), doc("b", "entropy")}
	for _, q := range []string{"heat", "entropy rises", "optics", "a", "the light"} {
		ctx, citations := Match(q, docs)
		assert.Equal(t, ctx == "", len(citations) == 0, q)
		assert.LessOrEqual(t, len(citations), 3, q)
	}
}
