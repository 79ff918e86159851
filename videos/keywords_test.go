package videos

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywordsStaticThenFrequent(t *testing.T) {
	text := "Velocity and acceleration. The velocity of a particle; particle particle motion"

	assert.Equal(t, []string{"motion", "velocity", "acceleration", "particle"}, ExtractKeywords(text))
}

func TestExtractKeywordsDropsStopWords(t *testing.T) {
	got := ExtractKeywords("these these which which")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractKeywordsTiesKeepFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, ExtractKeywords("alpha beta beta alpha gamma gamma"))
}

func TestExtractKeywordsCapsFrequentTerms(t *testing.T) {
	words := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee", "ffff", "gggg", "hhhh", "iiii", "jjjj", "kkkk", "llll"}
	text := strings.Join(words, " ") + " " + strings.Join(words, " ")

	assert.Equal(t, words[:10], ExtractKeywords(text))
}

func TestExtractKeywordsMatchesPhrases(t *testing.T) {
	got := ExtractKeywords("Uniform Circular Motion")
	assert.Contains(t, got, "circular motion")
	assert.Contains(t, got, "motion")
}
